package systems

import (
	"fmt"
	"maps"
	"slices"

	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/F3kilo/hex-war/engine/resources"
	"golang.org/x/exp/constraints"
)

// TexturedGeometry is one draw of a scene: a geometry covered by a texture.
type TexturedGeometry struct {
	Geometry *Geometry
	Texture  *Texture
	Instance metadata.Instance
}

type sceneRecord struct {
	items []metadata.TexturedGeometryData
	// Clones kept so that everything drawn by the scene outlives other holders.
	textures   map[metadata.TextureID]*Texture
	geometries map[metadata.GeometryID]*Geometry
}

func newSceneRecord() *sceneRecord {
	return &sceneRecord{
		textures:   make(map[metadata.TextureID]*Texture),
		geometries: make(map[metadata.GeometryID]*Geometry),
	}
}

// release gives back every retained handle. It must run outside the scene
// store borrow since the last release drops from the texture and geometry
// managers.
func (rec *sceneRecord) release() {
	for _, id := range slices.Sorted(maps.Keys(rec.textures)) {
		rec.textures[id].Release()
	}
	for _, id := range slices.Sorted(maps.Keys(rec.geometries)) {
		rec.geometries[id].Release()
	}
}

type SceneManager struct {
	store    *resources.Store[metadata.SceneID, *sceneRecord]
	textures *TextureManager
	renderer *RendererSystem
}

func NewSceneManager(textures *TextureManager, renderer *RendererSystem) *SceneManager {
	return &SceneManager{
		store:    resources.NewStore[metadata.SceneID, *sceneRecord](core.KindScene),
		textures: textures,
		renderer: renderer,
	}
}

func (sm *SceneManager) Kind() core.ResourceKind {
	return core.KindScene
}

func (sm *SceneManager) Create() (metadata.SceneID, error) {
	id, err := sm.store.Insert(newSceneRecord())
	if err != nil {
		return 0, &core.LoadError{Kind: core.KindScene, Cause: err}
	}
	return id, nil
}

func (sm *SceneManager) Drop(id metadata.SceneID) bool {
	rec, ok := sm.store.Remove(id)
	if !ok {
		return false
	}
	rec.release()
	core.LogDebug("scene #%d dropped with %d items", id, len(rec.items))
	return true
}

// AddItem appends a draw to the scene and keeps its texture and geometry alive
// for as long as the scene holds the item.
func (sm *SceneManager) AddItem(id metadata.SceneID, item TexturedGeometry) error {
	if item.Texture == nil {
		return fmt.Errorf("%w: scene item without a texture", core.ErrNotFound)
	}
	if item.Geometry == nil {
		return fmt.Errorf("%w: scene item without a geometry", core.ErrNotFound)
	}
	if err := checkAlive(item.Texture.Handle); err != nil {
		return err
	}
	if err := checkAlive(item.Geometry.Handle); err != nil {
		return err
	}
	data := metadata.TexturedGeometryData{
		GeometryID: item.Geometry.ID(),
		TextureID:  item.Texture.ID(),
		Instance:   item.Instance,
	}

	ok := sm.store.Update(id, func(rec *sceneRecord) {
		rec.items = append(rec.items, data)
		if _, retained := rec.textures[data.TextureID]; !retained {
			rec.textures[data.TextureID] = item.Texture.Clone()
		}
		if _, retained := rec.geometries[data.GeometryID]; !retained {
			rec.geometries[data.GeometryID] = item.Geometry.Clone()
		}
	})
	if !ok {
		return core.NewNotFoundError(core.KindScene, uint64(id))
	}
	return nil
}

func checkAlive[K constraints.Unsigned](h *resources.Handle[K]) error {
	m := h.Manager()
	if h.Released() || !m.Contains(h.RawID()) {
		return core.NewNotFoundError(m.Kind(), uint64(h.RawID()))
	}
	return nil
}

// Clear removes every item and releases what the scene retained.
func (sm *SceneManager) Clear(id metadata.SceneID) error {
	old := newSceneRecord()
	ok := sm.store.Update(id, func(rec *sceneRecord) {
		*old, *rec = *rec, *newSceneRecord()
	})
	if !ok {
		return core.NewNotFoundError(core.KindScene, uint64(id))
	}
	old.release()
	return nil
}

// Items returns a copy of the scene's draws in insertion order.
func (sm *SceneManager) Items(id metadata.SceneID) ([]metadata.TexturedGeometryData, error) {
	rec, ok := sm.store.Get(id)
	if !ok {
		return nil, core.NewNotFoundError(core.KindScene, uint64(id))
	}
	return slices.Clone(rec.items), nil
}

// Render hands the scene to the backend and returns the id of the produced
// frame texture, registered in the texture manager.
func (sm *SceneManager) Render(id metadata.SceneID, ctx metadata.RenderContext) (metadata.TextureID, error) {
	items, err := sm.Items(id)
	if err != nil {
		return 0, err
	}
	return sm.renderer.DrawFrame(ctx, metadata.RenderData{TexturedGeometries: items}), nil
}

func (sm *SceneManager) Contains(id metadata.SceneID) bool {
	return sm.store.Contains(id)
}

func (sm *SceneManager) IDs() []metadata.SceneID {
	return sm.store.IDs()
}

func (sm *SceneManager) Len() int {
	return sm.store.Len()
}

// Close drops every scene, releasing what they retained.
func (sm *SceneManager) Close() error {
	recs := sm.store.Close()
	for _, rec := range recs {
		rec.release()
	}
	if recs != nil {
		core.LogDebug("scene manager closed with %d scenes", len(recs))
	}
	return nil
}

// Scene is an owning handle to a scene of a SceneManager.
type Scene struct {
	*resources.Handle[metadata.SceneID]
	manager *SceneManager
}

func NewScene(m *SceneManager) (*Scene, error) {
	id, err := m.Create()
	if err != nil {
		return nil, err
	}
	return &Scene{Handle: resources.NewHandle[metadata.SceneID](id, m), manager: m}, nil
}

func (s *Scene) Clone() *Scene {
	return &Scene{Handle: s.Handle.Clone(), manager: s.manager}
}

func (s *Scene) AddItem(item TexturedGeometry) error {
	err := s.manager.AddItem(s.ID(), item)
	if err != nil && !s.manager.Contains(s.ID()) {
		panic(fmt.Sprintf("%s: %s", s.Handle, err))
	}
	return err
}

func (s *Scene) Clear() {
	if err := s.manager.Clear(s.ID()); err != nil {
		panic(fmt.Sprintf("%s: %s", s.Handle, err))
	}
}

func (s *Scene) Items() []metadata.TexturedGeometryData {
	items, err := s.manager.Items(s.ID())
	if err != nil {
		panic(fmt.Sprintf("%s: %s", s.Handle, err))
	}
	return items
}

// Render draws the scene and returns an owning handle to the produced frame.
// A backend returning a texture unknown to the texture manager breaks its
// contract and panics.
func (s *Scene) Render(ctx metadata.RenderContext) *Texture {
	id, err := s.manager.Render(s.ID(), ctx)
	if err != nil {
		panic(fmt.Sprintf("%s: %s", s.Handle, err))
	}
	frame, err := TextureFromExisting(id, s.manager.textures)
	if err != nil {
		panic(fmt.Sprintf("%s: backend returned an unregistered frame: %s", s.Handle, err))
	}
	return frame
}
