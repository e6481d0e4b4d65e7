package systems

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/F3kilo/hex-war/engine/assets"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	glm "github.com/go-gl/mathgl/mgl32"
)

// fakeAssets serves images and geometries from memory.
type fakeAssets struct {
	mu         sync.Mutex
	images     map[string]metadata.ImageResourceData
	geometries map[string]*metadata.GeometryData
	broken     map[string]bool
	panicking  map[string]bool
	loads      int
}

func newFakeAssets() *fakeAssets {
	quad := &metadata.GeometryData{
		Name: "quad",
		Vertices: []metadata.Vertex2D{
			{Position: glm.Vec2{-0.5, -0.5}, Texcoord: glm.Vec2{0, 1}},
			{Position: glm.Vec2{0.5, -0.5}, Texcoord: glm.Vec2{1, 1}},
			{Position: glm.Vec2{0.5, 0.5}, Texcoord: glm.Vec2{1, 0}},
			{Position: glm.Vec2{-0.5, 0.5}, Texcoord: glm.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
	return &fakeAssets{
		images: map[string]metadata.ImageResourceData{
			"sprite.png": {Width: 32, Height: 16, ChannelCount: 4, HasTransparency: true},
			"hex.png":    {Width: 64, Height: 64, ChannelCount: 4},
			"broken.png": {},
			"boom.png":   {},
		},
		geometries: map[string]*metadata.GeometryData{"quad.geom.toml": quad},
		broken:     map[string]bool{"broken.png": true},
		panicking:  map[string]bool{"boom.png": true},
	}
}

func (fa *fakeAssets) Check(path string, want metadata.ResourceType) (assets.AssetInfo, error) {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	var got metadata.ResourceType
	if _, ok := fa.images[path]; ok {
		got = metadata.ResourceTypeImage
	} else if _, ok := fa.geometries[path]; ok {
		got = metadata.ResourceTypeGeometry
	} else if strings.HasSuffix(path, ".txt") {
		return assets.AssetInfo{}, fmt.Errorf("%w: '%s'", core.ErrUnsupportedFormat, path)
	} else {
		return assets.AssetInfo{}, fmt.Errorf("%w: asset '%s'", core.ErrNotFound, path)
	}
	if got != want {
		return assets.AssetInfo{}, fmt.Errorf("%w: '%s' is %s", core.ErrUnsupportedFormat, path, got)
	}
	return assets.AssetInfo{Path: path, Type: got}, nil
}

func (fa *fakeAssets) LoadAsset(path string, resourceType metadata.ResourceType) (*metadata.Resource, error) {
	info, err := fa.Check(path, resourceType)
	if err != nil {
		return nil, err
	}

	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.loads++
	if fa.panicking[path] {
		panic("decoder crashed on " + path)
	}
	if fa.broken[path] {
		return nil, fmt.Errorf("decode '%s': corrupt data", path)
	}
	if info.Type == metadata.ResourceTypeGeometry {
		return &metadata.Resource{Name: path, FullPath: path, Type: info.Type, Data: fa.geometries[path]}, nil
	}
	img := fa.images[path]
	return &metadata.Resource{Name: path, FullPath: path, Type: info.Type, Data: &img}, nil
}

func (fa *fakeAssets) loadCount() int {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.loads
}

// gate blocks the worker until the returned func is called.
func gate(t *testing.T, s TaskSender) func() {
	t.Helper()
	ch := make(chan struct{})
	if err := s.Send(TaskFunc(func() { <-ch })); err != nil {
		t.Fatalf("gate: %v", err)
	}
	var once sync.Once
	open := func() { once.Do(func() { close(ch) }) }
	t.Cleanup(open)
	return open
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, contains) {
			t.Fatalf("panic %q does not contain %q", msg, contains)
		}
	}()
	fn()
}
