package engine

import (
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/F3kilo/hex-war/engine/systems"
)

// Game is implemented by applications driven by the Engine. Only FnUpdate and
// FnRender are required.
type Game struct {
	Config       *core.Config
	State        interface{}
	FnBoot       Boot
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnShutdown   Shutdown
}

// Boot runs before any system exists and may still adjust the config.
type Boot func(config *core.Config) error
type Initialize func(sm *systems.SystemManager) error
type Update func(deltaTime float64) error

// Render returns the scene to draw this frame. A nil scene skips drawing.
type Render func(deltaTime float64) (*systems.Scene, metadata.RenderContext, error)
type Shutdown func() error
