package loaders

import (
	"errors"
	"fmt"
	"io"

	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidGeometry = errors.New("invalid geometry descriptor")

type geometryVertex struct {
	Position [2]float32 `toml:"position"`
	UV       [2]float32 `toml:"uv"`
}

type geometryFile struct {
	Name     string           `toml:"name"`
	Vertices []geometryVertex `toml:"vertices"`
	Indices  []uint32         `toml:"indices"`
}

// GeometryLoader reads *.geom.toml descriptors:
//
//	name = "quad"
//	indices = [0, 1, 2, 2, 3, 0]
//
//	[[vertices]]
//	position = [-0.5, -0.5]
//	uv = [0.0, 1.0]
type GeometryLoader struct{}

func (gl *GeometryLoader) Load(path string, r io.Reader) (*metadata.Resource, error) {
	var gf geometryFile
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&gf); err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrInvalidGeometry, path, err)
	}
	if err := validateGeometry(&gf); err != nil {
		return nil, fmt.Errorf("%w '%s': %v", ErrInvalidGeometry, path, err)
	}

	data := &metadata.GeometryData{
		Name:     gf.Name,
		Vertices: make([]metadata.Vertex2D, len(gf.Vertices)),
		Indices:  gf.Indices,
	}
	for i, v := range gf.Vertices {
		data.Vertices[i] = metadata.Vertex2D{
			Position: glm.Vec2{v.Position[0], v.Position[1]},
			Texcoord: glm.Vec2{v.UV[0], v.UV[1]},
		}
	}

	return &metadata.Resource{
		Name:     gf.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeGeometry,
		DataSize: uint64(len(data.Vertices))*16 + uint64(len(data.Indices))*4,
		Data:     data,
	}, nil
}

func validateGeometry(gf *geometryFile) error {
	if gf.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(gf.Vertices) == 0 {
		return fmt.Errorf("at least one vertex is required")
	}
	if len(gf.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(gf.Indices))
	}
	for _, idx := range gf.Indices {
		if int(idx) >= len(gf.Vertices) {
			return fmt.Errorf("index %d out of range (vertex count %d)", idx, len(gf.Vertices))
		}
	}
	return nil
}
