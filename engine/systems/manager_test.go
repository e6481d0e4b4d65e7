package systems

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/F3kilo/hex-war/engine/assets"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer"
	"github.com/F3kilo/hex-war/engine/renderer/headless"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	glm "github.com/go-gl/mathgl/mgl32"
)

const triangleGeometry = `
name = "tri"
indices = [0, 1, 2]

[[vertices]]
position = [0.0, 0.5]
uv = [0.5, 0.0]

[[vertices]]
position = [-0.5, -0.5]
uv = [0.0, 1.0]

[[vertices]]
position = [0.5, -0.5]
uv = [1.0, 1.0]
`

func writeAssetRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 12, 6))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	files := map[string][]byte{
		"textures/tile.png":      buf.Bytes(),
		"geometry/tri.geom.toml": []byte(triangleGeometry),
	}
	for rel, data := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestSystemManager_EndToEnd(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Assets = core.AssetsConfig{Root: writeAssetRoot(t)}
	cfg.Application.FrameWidth, cfg.Application.FrameHeight = 64, 48

	am, err := assets.NewAssetManager(cfg.Assets)
	if err != nil {
		t.Fatalf("NewAssetManager: %v", err)
	}
	defer am.Close()

	var backend *headless.Backend
	sm, err := NewSystemManager(cfg, am, func(textures renderer.TextureRegistry) renderer.Backend {
		backend = headless.New(textures)
		return backend
	})
	if err != nil {
		t.Fatalf("NewSystemManager: %v", err)
	}
	if err := sm.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	tex, err := NewTexture("textures/tile.png", sm.Textures())
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	geom, err := NewGeometry("geometry/tri.geom.toml", sm.Geometries())
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if geom.VertexCount() != 3 {
		t.Fatalf("VertexCount = %d", geom.VertexCount())
	}

	deadline := time.Now().Add(5 * time.Second)
	for tex.State() == metadata.TextureStateLoading && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	data, err := tex.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	if data.Size != (metadata.Dimensions{Width: 12, Height: 6}) || data.ChannelCount != 1 || data.HasTransparency {
		t.Fatalf("Data = %+v", data)
	}

	scene, err := NewScene(sm.Scenes())
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if err := scene.AddItem(TexturedGeometry{Geometry: geom, Texture: tex, Instance: metadata.NewInstance()}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	tex.Release()
	geom.Release()

	frame := scene.Render(metadata.NewRenderContext(glm.Ident4(), glm.Ident4()))
	sm.Renderer().Present(frame.ID())
	if got := backend.Presented(); len(got) != 1 || got[0] != frame.ID() {
		t.Fatalf("Presented = %v", got)
	}
	frame.Release()

	if err := sm.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sm.Textures().Len() != 0 || sm.Geometries().Len() != 0 {
		t.Fatal("Shutdown left resources registered")
	}
	// Handles released after shutdown are ignored.
	scene.Release()
	if err := sm.Worker().Sender().Send(TaskFunc(func() {})); err == nil {
		t.Fatal("worker still accepts tasks after Shutdown")
	}
}
