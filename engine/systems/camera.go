package systems

import (
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	glm "github.com/go-gl/mathgl/mgl32"
)

/** @brief The name of the default camera. */
const DefaultCameraName = "default"

/**
 * @brief A 2D camera looking at the board. The view matrix is rebuilt
 * lazily after the position, rotation or zoom changed.
 */
type Camera struct {
	position glm.Vec2
	// Rotation around the view axis, in radians.
	rotation float32
	zoom     float32

	isDirty    bool
	viewMatrix glm.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.position = glm.Vec2{}
	c.rotation = 0
	c.zoom = 1
	c.isDirty = false
	c.viewMatrix = glm.Ident4()
}

func (c *Camera) Position() glm.Vec2 {
	return c.position
}

func (c *Camera) SetPosition(position glm.Vec2) {
	c.position = position
	c.isDirty = true
}

// Move pans the camera by delta world units.
func (c *Camera) Move(delta glm.Vec2) {
	c.SetPosition(c.position.Add(delta))
}

func (c *Camera) Rotation() float32 {
	return c.rotation
}

func (c *Camera) SetRotation(radians float32) {
	c.rotation = radians
	c.isDirty = true
}

func (c *Camera) Zoom() float32 {
	return c.zoom
}

// SetZoom scales the view; values <= 0 are ignored.
func (c *Camera) SetZoom(zoom float32) {
	if zoom <= 0 {
		core.LogWarn("camera zoom must be > 0, got %f", zoom)
		return
	}
	c.zoom = zoom
	c.isDirty = true
}

func (c *Camera) View() glm.Mat4 {
	if c.isDirty {
		scale := glm.Scale3D(c.zoom, c.zoom, 1)
		rotation := glm.HomogRotate3DZ(-c.rotation)
		translation := glm.Translate3D(-c.position.X(), -c.position.Y(), 0)
		c.viewMatrix = scale.Mul4(rotation).Mul4(translation)
		c.isDirty = false
	}
	return c.viewMatrix
}

// Projection maps a width x height pixel frame centered on the origin.
func (c *Camera) Projection(width, height uint32) glm.Mat4 {
	w, h := float32(width)/2, float32(height)/2
	return glm.Ortho2D(-w, w, -h, h)
}

// RenderContext builds the transforms for a frame of the given size.
func (c *Camera) RenderContext(width, height uint32) metadata.RenderContext {
	return metadata.NewRenderContext(c.View(), c.Projection(width, height))
}

type cameraLookup struct {
	referenceCount uint16
	camera         *Camera
}

type CameraSystem struct {
	cameras map[string]*cameraLookup
	// A default, non-registered camera that always exists as a fallback.
	defaultCamera *Camera
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{
		cameras:       make(map[string]*cameraLookup),
		defaultCamera: NewCamera(),
	}
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is
 * created. The reference counter is incremented.
 */
func (cs *CameraSystem) Acquire(name string) *Camera {
	if name == DefaultCameraName {
		return cs.defaultCamera
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		core.LogDebug("creating new camera named '%s'...", name)
		lookup = &cameraLookup{camera: NewCamera()}
		cs.cameras[name] = lookup
	}
	lookup.referenceCount++
	return lookup.camera
}

/**
 * @brief Releases a camera with the given name. When the counter reaches
 * 0 the camera is forgotten.
 */
func (cs *CameraSystem) Release(name string) {
	if name == DefaultCameraName {
		core.LogDebug("cannot release default camera. Nothing was done.")
		return
	}
	lookup, ok := cs.cameras[name]
	if !ok {
		core.LogWarn("camera '%s' released but never acquired", name)
		return
	}
	lookup.referenceCount--
	if lookup.referenceCount == 0 {
		lookup.camera.Reset()
		delete(cs.cameras, name)
	}
}

func (cs *CameraSystem) GetDefault() *Camera {
	return cs.defaultCamera
}

func (cs *CameraSystem) Shutdown() error {
	clear(cs.cameras)
	cs.defaultCamera.Reset()
	return nil
}
