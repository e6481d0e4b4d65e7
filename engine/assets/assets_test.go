package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/pierrec/lz4"
)

const quadGeometry = `
name = "quad"
indices = [0, 1, 2, 2, 3, 0]

[[vertices]]
position = [-0.5, -0.5]
uv = [0.0, 1.0]

[[vertices]]
position = [0.5, -0.5]
uv = [1.0, 1.0]

[[vertices]]
position = [0.5, 0.5]
uv = [1.0, 0.0]

[[vertices]]
position = [-0.5, 0.5]
uv = [0.0, 0.0]
`

func encodePNG(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("lz4 write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("lz4 close: %v", err)
	}
	return buf.Bytes()
}

func newTestManager(t *testing.T, watch bool) (*AssetManager, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "textures/hex.png", encodePNG(t, 4, 2, 255))
	writeFile(t, root, "textures/ghost.png.lz4", compress(t, encodePNG(t, 3, 3, 128)))
	writeFile(t, root, "geometry/quad.geom.toml", []byte(quadGeometry))
	writeFile(t, root, "notes.txt", []byte("not an asset"))

	am, err := NewAssetManager(core.AssetsConfig{Root: root, Watch: watch})
	if err != nil {
		t.Fatalf("NewAssetManager: %v", err)
	}
	t.Cleanup(func() { am.Close() })
	return am, root
}

func TestAssetManager_IndexesRoot(t *testing.T) {
	am, _ := newTestManager(t, false)

	got := am.Assets()
	want := []string{"geometry/quad.geom.toml", "textures/ghost.png.lz4", "textures/hex.png"}
	if len(got) != len(want) {
		t.Fatalf("Assets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Assets() = %v, want %v", got, want)
		}
	}

	info, err := am.Lookup("textures/ghost.png.lz4")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if info.Type != metadata.ResourceTypeImage || !info.Compressed {
		t.Errorf("ghost info = %+v, want compressed image", info)
	}
}

func TestAssetManager_LookupErrors(t *testing.T) {
	am, root := newTestManager(t, false)

	if _, err := am.Lookup("textures/missing.png"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing asset: err = %v, want ErrNotFound", err)
	}
	if _, err := am.Lookup("../outside.png"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("outside root: err = %v, want ErrNotFound", err)
	}
	if _, err := am.Lookup("notes.txt"); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("unknown type: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := am.Check("geometry/quad.geom.toml", metadata.ResourceTypeImage); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("wrong type: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := am.Lookup(filepath.Join(root, "textures", "hex.png")); err != nil {
		t.Errorf("absolute path inside root: %v", err)
	}
}

func TestAssetManager_LookupFallsBackToDisk(t *testing.T) {
	am, root := newTestManager(t, false)

	writeFile(t, root, "textures/late.bmp", []byte("bmp"))
	if am.Indexed("textures/late.bmp") {
		t.Fatal("late file indexed without a watcher")
	}
	if _, err := am.Lookup("textures/late.bmp"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !am.Indexed("textures/late.bmp") {
		t.Error("Lookup did not index the late file")
	}
}

func TestAssetManager_OpenDecompresses(t *testing.T) {
	am, _ := newTestManager(t, false)

	r, err := am.Open("textures/ghost.png.lz4")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(raw, encodePNG(t, 3, 3, 128)) {
		t.Error("decompressed bytes differ from the original")
	}
}

func TestAssetManager_LoadAsset(t *testing.T) {
	am, _ := newTestManager(t, false)

	res, err := am.LoadAsset("textures/ghost.png.lz4", metadata.ResourceTypeImage)
	if err != nil {
		t.Fatalf("LoadAsset image: %v", err)
	}
	img := res.Data.(*metadata.ImageResourceData)
	if img.Width != 3 || img.Height != 3 || !img.HasTransparency {
		t.Errorf("image data = %+v", img)
	}

	res, err = am.LoadAsset("geometry/quad.geom.toml", metadata.ResourceTypeGeometry)
	if err != nil {
		t.Fatalf("LoadAsset geometry: %v", err)
	}
	geom := res.Data.(*metadata.GeometryData)
	if len(geom.Vertices) != 4 || len(geom.Indices) != 6 {
		t.Errorf("geometry = %d vertices, %d indices", len(geom.Vertices), len(geom.Indices))
	}
}

func TestAssetManager_WatchTracksChanges(t *testing.T) {
	am, root := newTestManager(t, true)

	writeFile(t, root, "textures/new/tile.png", encodePNG(t, 1, 1, 255))
	waitFor(t, func() bool { return am.Indexed("textures/new/tile.png") })

	if err := os.Remove(filepath.Join(root, "textures", "hex.png")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	waitFor(t, func() bool { return !am.Indexed("textures/hex.png") })
}

func TestAssetManager_CloseIsIdempotent(t *testing.T) {
	am, _ := newTestManager(t, true)
	if err := am.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := am.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := []struct {
		path       string
		want       metadata.ResourceType
		compressed bool
	}{
		{"a.png", metadata.ResourceTypeImage, false},
		{"a.JPEG", metadata.ResourceTypeImage, false},
		{"a.webp.lz4", metadata.ResourceTypeImage, true},
		{"a.geom.toml", metadata.ResourceTypeGeometry, false},
		{"a.geom.toml.lz4", metadata.ResourceTypeGeometry, true},
		{"config.toml", metadata.ResourceTypeNone, false},
		{"a.lz4", metadata.ResourceTypeNone, true},
	}
	for _, tt := range tests {
		got, compressed := determineAssetType(tt.path)
		if got != tt.want || compressed != tt.compressed {
			t.Errorf("determineAssetType(%q) = %v, %v; want %v, %v", tt.path, got, compressed, tt.want, tt.compressed)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
