package systems

import (
	"errors"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer"
)

// BackendFactory builds the rendering backend once the texture manager it
// registers frames with exists.
type BackendFactory func(textures renderer.TextureRegistry) renderer.Backend

// SystemManager wires the task worker, the resource managers and the renderer
// together. All of its systems belong to the goroutine that created it.
type SystemManager struct {
	cameraSystem    *CameraSystem
	taskWorker      *TaskWorker
	textureManager  *TextureManager
	geometryManager *GeometryManager
	sceneManager    *SceneManager
	rendererSystem  *RendererSystem
}

func NewSystemManager(cfg *core.Config, am AssetLoader, newBackend BackendFactory) (*SystemManager, error) {
	tw, err := NewTaskWorker(cfg.Worker)
	if err != nil {
		return nil, err
	}

	ts := NewTextureManager(NewTextureManagerConfig(cfg.Textures), tw.Sender(), am)
	gs := NewGeometryManager(am)

	rs, err := NewRendererSystem(cfg.Application.Name, cfg.Application.FrameWidth, cfg.Application.FrameHeight, newBackend(ts))
	if err != nil {
		tw.Close()
		return nil, err
	}
	ss := NewSceneManager(ts, rs)

	return &SystemManager{
		cameraSystem:    NewCameraSystem(),
		taskWorker:      tw,
		textureManager:  ts,
		geometryManager: gs,
		sceneManager:    ss,
		rendererSystem:  rs,
	}, nil
}

func (sm *SystemManager) Initialize() error {
	if err := sm.rendererSystem.Initialize(); err != nil {
		return err
	}
	core.LogInfo("systems initialized")
	return nil
}

func (sm *SystemManager) Cameras() *CameraSystem       { return sm.cameraSystem }
func (sm *SystemManager) Textures() *TextureManager    { return sm.textureManager }
func (sm *SystemManager) Geometries() *GeometryManager { return sm.geometryManager }
func (sm *SystemManager) Scenes() *SceneManager        { return sm.sceneManager }
func (sm *SystemManager) Renderer() *RendererSystem    { return sm.rendererSystem }
func (sm *SystemManager) Worker() *TaskWorker          { return sm.taskWorker }

// Shutdown closes the systems in reverse dependency order. Scenes go first so
// the handles they retain are given back to still open managers.
func (sm *SystemManager) Shutdown() error {
	var errs []error
	if err := sm.sceneManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := sm.geometryManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := sm.textureManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := sm.rendererSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	sm.taskWorker.Close()
	if err := sm.cameraSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
