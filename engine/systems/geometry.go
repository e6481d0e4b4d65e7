package systems

import (
	"fmt"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/F3kilo/hex-war/engine/resources"
)

type geometryRecord struct {
	path string
	data *metadata.GeometryData
}

// GeometryManager owns geometries. Descriptors are small, so they are parsed
// synchronously and a created geometry is ready right away.
type GeometryManager struct {
	store        *resources.Store[metadata.GeometryID, *geometryRecord]
	assetManager AssetLoader
}

func NewGeometryManager(am AssetLoader) *GeometryManager {
	return &GeometryManager{
		store:        resources.NewStore[metadata.GeometryID, *geometryRecord](core.KindGeometry),
		assetManager: am,
	}
}

func (gm *GeometryManager) Kind() core.ResourceKind {
	return core.KindGeometry
}

/**
 * @brief Loads the geometry descriptor at path and registers it.
 * No id is allocated when an error is returned.
 */
func (gm *GeometryManager) Create(path string) (metadata.GeometryID, error) {
	if gm.store.Closed() {
		return 0, &core.LoadError{Kind: core.KindGeometry, Path: path, Cause: core.ErrManagerClosed}
	}
	res, err := gm.assetManager.LoadAsset(path, metadata.ResourceTypeGeometry)
	if err != nil {
		return 0, &core.LoadError{Kind: core.KindGeometry, Path: path, Cause: err}
	}
	data, ok := res.Data.(*metadata.GeometryData)
	if !ok {
		return 0, &core.LoadError{Kind: core.KindGeometry, Path: path, Cause: fmt.Errorf("%w: loader returned %T", core.ErrUnsupportedFormat, res.Data)}
	}

	id, err := gm.store.Insert(&geometryRecord{path: path, data: data})
	if err != nil {
		return 0, &core.LoadError{Kind: core.KindGeometry, Path: path, Cause: err}
	}
	core.LogDebug("geometry #%d '%s' loaded (%d vertices, %d indices)", id, path, len(data.Vertices), len(data.Indices))
	return id, nil
}

func (gm *GeometryManager) Drop(id metadata.GeometryID) bool {
	_, ok := gm.store.Remove(id)
	if ok {
		core.LogDebug("geometry #%d dropped", id)
	}
	return ok
}

func (gm *GeometryManager) Path(id metadata.GeometryID) (string, error) {
	rec, ok := gm.store.Get(id)
	if !ok {
		return "", core.NewNotFoundError(core.KindGeometry, uint64(id))
	}
	return rec.path, nil
}

// Data returns the parsed descriptor. It is shared and must not be modified.
func (gm *GeometryManager) Data(id metadata.GeometryID) (*metadata.GeometryData, error) {
	rec, ok := gm.store.Get(id)
	if !ok {
		return nil, core.NewNotFoundError(core.KindGeometry, uint64(id))
	}
	return rec.data, nil
}

func (gm *GeometryManager) Contains(id metadata.GeometryID) bool {
	return gm.store.Contains(id)
}

func (gm *GeometryManager) IDs() []metadata.GeometryID {
	return gm.store.IDs()
}

func (gm *GeometryManager) Len() int {
	return gm.store.Len()
}

func (gm *GeometryManager) Close() error {
	if recs := gm.store.Close(); recs != nil {
		core.LogDebug("geometry manager closed with %d geometries", len(recs))
	}
	return nil
}

// Geometry is an owning handle to a geometry of a GeometryManager.
type Geometry struct {
	*resources.Handle[metadata.GeometryID]
	manager *GeometryManager
}

func NewGeometry(path string, m *GeometryManager) (*Geometry, error) {
	id, err := m.Create(path)
	if err != nil {
		return nil, err
	}
	return &Geometry{Handle: resources.NewHandle[metadata.GeometryID](id, m), manager: m}, nil
}

func GeometryFromExisting(id metadata.GeometryID, m *GeometryManager) (*Geometry, error) {
	h, err := resources.FromExisting[metadata.GeometryID](id, m)
	if err != nil {
		return nil, err
	}
	return &Geometry{Handle: h, manager: m}, nil
}

func (g *Geometry) Clone() *Geometry {
	return &Geometry{Handle: g.Handle.Clone(), manager: g.manager}
}

func (g *Geometry) Path() string {
	path, err := g.manager.Path(g.ID())
	if err != nil {
		panic(fmt.Sprintf("%s: %s", g.Handle, err))
	}
	return path
}

func (g *Geometry) data() *metadata.GeometryData {
	data, err := g.manager.Data(g.ID())
	if err != nil {
		panic(fmt.Sprintf("%s: %s", g.Handle, err))
	}
	return data
}

func (g *Geometry) VertexCount() int {
	return len(g.data().Vertices)
}

func (g *Geometry) IndexCount() int {
	return len(g.data().Indices)
}

func (g *Geometry) Manager() *GeometryManager {
	return g.manager
}
