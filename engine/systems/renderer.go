package systems

import (
	"fmt"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
)

// RendererSystem drives a rendering backend on behalf of the scene manager.
type RendererSystem struct {
	backend renderer.Backend

	// application
	AppName   string
	AppWidth  uint32
	AppHeight uint32

	initialized bool
	// The number of frames rendered since Initialize.
	frameNumber uint64
}

func NewRendererSystem(appName string, appWidth, appHeight uint32, backend renderer.Backend) (*RendererSystem, error) {
	if backend == nil {
		return nil, fmt.Errorf("func NewRendererSystem - backend must not be nil")
	}
	return &RendererSystem{
		backend:   backend,
		AppName:   appName,
		AppWidth:  appWidth,
		AppHeight: appHeight,
	}, nil
}

func (r *RendererSystem) Initialize() error {
	if err := r.backend.Initialize(r.AppName, r.AppWidth, r.AppHeight); err != nil {
		core.LogError("renderer backend failed to initialize: %s", err)
		return err
	}
	r.initialized = true
	r.frameNumber = 0
	return nil
}

func (r *RendererSystem) Shutdown() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	return r.backend.Shutdown()
}

// DrawFrame renders data and returns the texture the backend produced.
func (r *RendererSystem) DrawFrame(ctx metadata.RenderContext, data metadata.RenderData) metadata.TextureID {
	id := r.backend.Render(ctx, data)
	r.frameNumber++
	return id
}

func (r *RendererSystem) Present(texture metadata.TextureID) {
	r.backend.Present(metadata.PresentInfo{Texture: texture})
}

func (r *RendererSystem) FrameNumber() uint64 {
	return r.frameNumber
}
