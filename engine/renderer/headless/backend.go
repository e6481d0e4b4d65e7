// Package headless provides a Backend that draws nothing. It produces render-target
// textures with the configured frame size and keeps track of what it was asked to do,
// which makes it useful in tests and on machines without a GPU.
package headless

import (
	"fmt"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/google/uuid"
)

const renderTargetPrefix = "render-target"

type Backend struct {
	textures    renderer.TextureRegistry
	appName     string
	frameSize   metadata.Dimensions
	initialized bool

	renderCount    uint64
	lastContext    metadata.RenderContext
	lastRenderData metadata.RenderData
	presented      []metadata.TextureID
}

func New(textures renderer.TextureRegistry) *Backend {
	return &Backend{
		textures: textures,
	}
}

func (b *Backend) Initialize(appName string, frameWidth, frameHeight uint32) error {
	if frameWidth == 0 || frameHeight == 0 {
		return fmt.Errorf("headless backend: invalid frame size %dx%d", frameWidth, frameHeight)
	}
	b.appName = appName
	b.frameSize = metadata.Dimensions{Width: frameWidth, Height: frameHeight}
	b.initialized = true
	core.LogInfo("headless backend initialized for '%s' (%dx%d)", appName, frameWidth, frameHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.initialized = false
	b.presented = nil
	core.LogInfo("headless backend shut down after %d renders", b.renderCount)
	return nil
}

func (b *Backend) Render(ctx metadata.RenderContext, data metadata.RenderData) metadata.TextureID {
	if !b.initialized {
		core.LogFatal("headless backend: Render called before Initialize")
	}

	b.lastContext = ctx
	b.lastRenderData = metadata.RenderData{
		TexturedGeometries: append([]metadata.TexturedGeometryData(nil), data.TexturedGeometries...),
	}
	b.renderCount++

	name := fmt.Sprintf("%s/%s", renderTargetPrefix, uuid.New().String())
	id := b.textures.Register(name, metadata.TextureData{
		Size:         b.frameSize,
		ChannelCount: 4,
		Location:     metadata.FullPageLocation(),
	})
	core.LogDebug("rendered %d items into %s (texture #%d)", len(data.TexturedGeometries), name, id)
	return id
}

func (b *Backend) Present(info metadata.PresentInfo) {
	if !b.textures.Contains(info.Texture) {
		core.LogError("headless backend: present of unknown texture #%d", info.Texture)
		return
	}
	b.presented = append(b.presented, info.Texture)
}

// RenderCount returns how many times Render was called.
func (b *Backend) RenderCount() uint64 {
	return b.renderCount
}

// LastRenderData returns a copy of the data passed to the latest Render call.
func (b *Backend) LastRenderData() metadata.RenderData {
	return metadata.RenderData{
		TexturedGeometries: append([]metadata.TexturedGeometryData(nil), b.lastRenderData.TexturedGeometries...),
	}
}

func (b *Backend) LastContext() metadata.RenderContext {
	return b.lastContext
}

// Presented lists presented textures in order.
func (b *Backend) Presented() []metadata.TextureID {
	return append([]metadata.TextureID(nil), b.presented...)
}
