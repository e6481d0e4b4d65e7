package renderer

import "github.com/F3kilo/hex-war/engine/renderer/metadata"

// TextureRegistry is the part of the texture manager a backend needs to publish
// the frames it produces.
type TextureRegistry interface {
	// Register adds a texture whose data is already available and returns its id.
	Register(name string, data metadata.TextureData) metadata.TextureID
	Contains(id metadata.TextureID) bool
}

// Backend issues draw calls and owns GPU objects. Every method is called from the
// goroutine that owns the resource managers.
type Backend interface {
	Initialize(appName string, frameWidth, frameHeight uint32) error
	Shutdown() error
	// Render draws data using ctx and returns the texture holding the produced frame.
	// The returned id must already be registered with the texture manager.
	Render(ctx metadata.RenderContext, data metadata.RenderData) metadata.TextureID
	// Present displays a previously rendered texture.
	Present(info metadata.PresentInfo)
}
