package testbed

import (
	"errors"
	"fmt"
	"math"

	"github.com/F3kilo/hex-war/engine"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/F3kilo/hex-war/engine/systems"
	glm "github.com/go-gl/mathgl/mgl32"
)

const (
	boardRadius = 3
	// Distance from a hex center to any of its corners, in pixels.
	hexSize = 40

	tileTexturePath   = "textures/tile.png"
	markerTexturePath = "textures/marker.png"
	hexGeometryPath   = "geometry/hex.geom.toml"
)

type TestGame struct {
	*engine.Game
}

// hexCell is a board cell in axial coordinates.
type hexCell struct {
	q, r int
}

// center returns the pixel position of a pointy-top hex.
func (c hexCell) center() (float32, float32) {
	x := hexSize * math.Sqrt(3) * (float64(c.q) + float64(c.r)/2)
	y := hexSize * 1.5 * float64(c.r)
	return float32(x), float32(y)
}

type gameState struct {
	camera        *systems.Camera
	tileTexture   *systems.Texture
	markerTexture *systems.Texture
	hexGeometry   *systems.Geometry
	scene         *systems.Scene

	board     []hexCell
	selected  int
	elapsed   float64
	tileState metadata.TextureLoadState

	width  uint32
	height uint32
}

func NewTestGame(config *core.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Boot(config *core.Config) error {
	core.LogInfo("booting testbed...")
	state := g.State.(*gameState)
	state.width = config.Application.FrameWidth
	state.height = config.Application.FrameHeight
	state.board = hexBoard(boardRadius)
	return nil
}

func hexBoard(radius int) []hexCell {
	var cells []hexCell
	for q := -radius; q <= radius; q++ {
		for r := max(-radius, -q-radius); r <= min(radius, -q+radius); r++ {
			cells = append(cells, hexCell{q: q, r: r})
		}
	}
	return cells
}

func (g *TestGame) Initialize(sm *systems.SystemManager) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.State.(*gameState)

	var err error
	state.hexGeometry, err = systems.NewGeometry(hexGeometryPath, sm.Geometries())
	if err != nil {
		return err
	}
	state.tileTexture, err = systems.NewTexture(tileTexturePath, sm.Textures())
	if err != nil {
		return err
	}
	state.tileState = metadata.TextureStateLoading

	// The marker is optional; the board is playable without it.
	state.markerTexture, err = systems.NewTexture(markerTexturePath, sm.Textures())
	if err != nil {
		var loadErr *core.LoadError
		if !errors.As(err, &loadErr) {
			return err
		}
		core.LogWarn("drawing without selection marker: %s", err)
		state.markerTexture = nil
	}

	state.camera = sm.Cameras().GetDefault()
	state.scene, err = systems.NewScene(sm.Scenes())
	if err != nil {
		return err
	}
	core.LogInfo("hex board with %d cells ready", len(state.board))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	state.selected = int(state.elapsed) % len(state.board)

	// Drift slowly around the board.
	angle := state.elapsed * 0.25
	state.camera.SetPosition(glm.Vec2{float32(20 * math.Cos(angle)), float32(20 * math.Sin(angle))})

	if current := state.tileTexture.State(); current != state.tileState {
		core.LogInfo("%s is %s", tileTexturePath, current)
		state.tileState = current
		if current == metadata.TextureStateReady {
			size, _ := state.tileTexture.Size()
			core.LogDebug("%s is %dx%d", tileTexturePath, size.Width, size.Height)
		}
	}
	if state.tileState == metadata.TextureStateFailed {
		return fmt.Errorf("tile texture '%s' failed to load", tileTexturePath)
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) (*systems.Scene, metadata.RenderContext, error) {
	state := g.State.(*gameState)
	state.scene.Clear()

	scale := glm.Scale3D(hexSize, hexSize, 1)
	for i, cell := range state.board {
		x, y := cell.center()
		instance := metadata.NewInstance()
		instance.Transform = glm.Translate3D(x, y, 0).Mul4(scale)
		if i == state.selected {
			pulse := float32(0.75 + 0.25*math.Sin(state.elapsed*2*math.Pi))
			instance.Color = glm.Vec4{pulse, pulse, 1, 1}
		}
		item := systems.TexturedGeometry{Geometry: state.hexGeometry, Texture: state.tileTexture, Instance: instance}
		if err := state.scene.AddItem(item); err != nil {
			return nil, metadata.RenderContext{}, err
		}
		if i == state.selected && state.markerTexture != nil {
			item.Texture = state.markerTexture
			if err := state.scene.AddItem(item); err != nil {
				return nil, metadata.RenderContext{}, err
			}
		}
	}

	return state.scene, state.camera.RenderContext(state.width, state.height), nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	if state.scene != nil {
		state.scene.Release()
	}
	if state.markerTexture != nil {
		state.markerTexture.Release()
	}
	if state.tileTexture != nil {
		state.tileTexture.Release()
	}
	if state.hexGeometry != nil {
		state.hexGeometry.Release()
	}
	return nil
}
