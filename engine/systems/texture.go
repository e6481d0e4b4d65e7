package systems

import (
	"errors"
	"fmt"

	"github.com/F3kilo/hex-war/engine/assets"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/F3kilo/hex-war/engine/resources"
)

// AssetLoader is the part of the asset manager the resource managers use.
type AssetLoader interface {
	Check(path string, want metadata.ResourceType) (assets.AssetInfo, error)
	LoadAsset(path string, resourceType metadata.ResourceType) (*metadata.Resource, error)
}

type TextureManagerConfig struct {
	// Size reported for textures that are still loading. Nil means such
	// queries fail with ErrLoading.
	Placeholder *metadata.Dimensions
}

// NewTextureManagerConfig converts the [textures] section of the engine config.
func NewTextureManagerConfig(cfg core.TexturesConfig) TextureManagerConfig {
	var tmc TextureManagerConfig
	if cfg.Placeholder != nil {
		tmc.Placeholder = &metadata.Dimensions{
			Width:  cfg.Placeholder.Width,
			Height: cfg.Placeholder.Height,
		}
	}
	return tmc
}

type textureRecord struct {
	path  string
	state metadata.TextureLoadState
	// Receives exactly one value, or is closed empty when the load failed.
	progress <-chan metadata.TextureData
	data     metadata.TextureData
}

// poll advances a loading record without blocking. Ready and Failed are terminal.
func (rec *textureRecord) poll() {
	if rec.state != metadata.TextureStateLoading {
		return
	}
	select {
	case data, ok := <-rec.progress:
		if ok {
			rec.data = data
			rec.state = metadata.TextureStateReady
		} else {
			rec.state = metadata.TextureStateFailed
		}
		rec.progress = nil
	default:
	}
}

// TextureManager owns every texture of the game. Image files are decoded on the
// task worker; the manager observes completion lazily, whenever a query needs
// the texture data.
type TextureManager struct {
	config       TextureManagerConfig
	store        *resources.Store[metadata.TextureID, *textureRecord]
	sender       TaskSender
	assetManager AssetLoader
}

func NewTextureManager(config TextureManagerConfig, sender TaskSender, am AssetLoader) *TextureManager {
	return &TextureManager{
		config:       config,
		store:        resources.NewStore[metadata.TextureID, *textureRecord](core.KindTexture),
		sender:       sender,
		assetManager: am,
	}
}

func (tm *TextureManager) Kind() core.ResourceKind {
	return core.KindTexture
}

// Create validates path and queues its decoding. The returned texture is
// Loading. No id is allocated when an error is returned.
func (tm *TextureManager) Create(path string) (metadata.TextureID, error) {
	if tm.store.Closed() {
		return 0, &core.LoadError{Kind: core.KindTexture, Path: path, Cause: core.ErrManagerClosed}
	}
	if _, err := tm.assetManager.Check(path, metadata.ResourceTypeImage); err != nil {
		return 0, &core.LoadError{Kind: core.KindTexture, Path: path, Cause: err}
	}

	progress := make(chan metadata.TextureData, 1)
	task := &textureLoadTask{
		path:         path,
		assetManager: tm.assetManager,
		out:          progress,
	}
	if err := tm.sender.Send(task); err != nil {
		return 0, &core.LoadError{Kind: core.KindTexture, Path: path, Cause: err}
	}

	id, err := tm.store.Insert(&textureRecord{
		path:     path,
		state:    metadata.TextureStateLoading,
		progress: progress,
	})
	if err != nil {
		return 0, &core.LoadError{Kind: core.KindTexture, Path: path, Cause: err}
	}
	core.LogDebug("texture #%d '%s' queued for loading", id, path)
	return id, nil
}

// Register adds a texture whose data is already available, such as a frame
// produced by the rendering backend.
func (tm *TextureManager) Register(name string, data metadata.TextureData) metadata.TextureID {
	id, err := tm.store.Insert(&textureRecord{
		path:  name,
		state: metadata.TextureStateReady,
		data:  data,
	})
	if err != nil {
		panic(fmt.Sprintf("texture manager: register '%s': %s", name, err))
	}
	return id
}

func (tm *TextureManager) Drop(id metadata.TextureID) bool {
	_, ok := tm.store.Remove(id)
	if ok {
		core.LogDebug("texture #%d dropped", id)
	}
	return ok
}

func (tm *TextureManager) Path(id metadata.TextureID) (string, error) {
	rec, ok := tm.store.Get(id)
	if !ok {
		return "", core.NewNotFoundError(core.KindTexture, uint64(id))
	}
	return rec.path, nil
}

// Size returns the texture size. While the texture is loading it fails with
// ErrLoading, or reports the placeholder size when one is configured.
func (tm *TextureManager) Size(id metadata.TextureID) (metadata.Dimensions, error) {
	data, state, err := tm.resolve(id)
	if err != nil {
		return metadata.Dimensions{}, err
	}
	if state == metadata.TextureStateLoading {
		if tm.config.Placeholder != nil {
			return *tm.config.Placeholder, nil
		}
		return metadata.Dimensions{}, core.NewLoadingError(core.KindTexture, uint64(id))
	}
	return data.Size, nil
}

// Data returns the loaded texture data. A placeholder is never returned here.
func (tm *TextureManager) Data(id metadata.TextureID) (metadata.TextureData, error) {
	data, state, err := tm.resolve(id)
	if err != nil {
		return metadata.TextureData{}, err
	}
	if state == metadata.TextureStateLoading {
		return metadata.TextureData{}, core.NewLoadingError(core.KindTexture, uint64(id))
	}
	return data, nil
}

// State polls the load and reports where the texture is in its lifecycle.
func (tm *TextureManager) State(id metadata.TextureID) (metadata.TextureLoadState, error) {
	var state metadata.TextureLoadState
	ok := tm.store.Update(id, func(rec *textureRecord) {
		rec.poll()
		state = rec.state
	})
	if !ok {
		return 0, core.NewNotFoundError(core.KindTexture, uint64(id))
	}
	return state, nil
}

func (tm *TextureManager) resolve(id metadata.TextureID) (metadata.TextureData, metadata.TextureLoadState, error) {
	var (
		data  metadata.TextureData
		state metadata.TextureLoadState
	)
	ok := tm.store.Update(id, func(rec *textureRecord) {
		rec.poll()
		data, state = rec.data, rec.state
	})
	if !ok {
		return data, state, core.NewNotFoundError(core.KindTexture, uint64(id))
	}
	if state == metadata.TextureStateFailed {
		return data, state, &core.UnavailableError{Kind: core.KindTexture, ID: uint64(id), Reason: core.ErrLoadAborted}
	}
	return data, state, nil
}

func (tm *TextureManager) Contains(id metadata.TextureID) bool {
	return tm.store.Contains(id)
}

func (tm *TextureManager) IDs() []metadata.TextureID {
	return tm.store.IDs()
}

func (tm *TextureManager) Len() int {
	return tm.store.Len()
}

// Close forgets every texture. Pending loads still run on the worker and their
// results are discarded. Handles released afterwards are ignored.
func (tm *TextureManager) Close() error {
	recs := tm.store.Close()
	if recs == nil {
		return nil
	}
	pending := 0
	for _, rec := range recs {
		if rec.state == metadata.TextureStateLoading {
			pending++
		}
	}
	core.LogDebug("texture manager closed with %d textures (%d still loading)", len(recs), pending)
	return nil
}

// textureLoadTask runs on the worker. It owns the sending side of the
// progress channel and always closes it.
type textureLoadTask struct {
	path         string
	assetManager AssetLoader
	out          chan<- metadata.TextureData
}

func (t *textureLoadTask) Perform() {
	defer close(t.out)

	res, err := t.assetManager.LoadAsset(t.path, metadata.ResourceTypeImage)
	if err != nil {
		core.LogError("texture '%s' failed to load: %s", t.path, err)
		return
	}
	img, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		core.LogError("texture '%s': loader returned %T, want *metadata.ImageResourceData", t.path, res.Data)
		return
	}

	// Capacity is one and this is the only send, so it never blocks even when
	// every handle to the texture is already gone.
	t.out <- metadata.TextureData{
		Size:            metadata.Dimensions{Width: img.Width, Height: img.Height},
		ChannelCount:    img.ChannelCount,
		HasTransparency: img.HasTransparency,
		Location:        metadata.FullPageLocation(),
	}
}

// Texture is an owning handle to a texture of a TextureManager.
type Texture struct {
	*resources.Handle[metadata.TextureID]
	manager *TextureManager
}

// NewTexture creates the texture and binds a handle to it.
func NewTexture(path string, m *TextureManager) (*Texture, error) {
	id, err := m.Create(path)
	if err != nil {
		return nil, err
	}
	return &Texture{Handle: resources.NewHandle[metadata.TextureID](id, m), manager: m}, nil
}

// TextureFromExisting binds a handle to a texture created elsewhere.
func TextureFromExisting(id metadata.TextureID, m *TextureManager) (*Texture, error) {
	h, err := resources.FromExisting[metadata.TextureID](id, m)
	if err != nil {
		return nil, err
	}
	return &Texture{Handle: h, manager: m}, nil
}

func (t *Texture) Clone() *Texture {
	return &Texture{Handle: t.Handle.Clone(), manager: t.manager}
}

func (t *Texture) Path() string {
	path, err := t.manager.Path(t.ID())
	if err != nil {
		panic(fmt.Sprintf("%s: %s", t.Handle, err))
	}
	return path
}

// Size returns the texture size. ErrLoading is passed through; any other
// failure means the handle outlived its texture and panics.
func (t *Texture) Size() (metadata.Dimensions, error) {
	size, err := t.manager.Size(t.ID())
	if err != nil && !isLoading(err) {
		panic(fmt.Sprintf("%s: %s", t.Handle, err))
	}
	return size, err
}

func (t *Texture) Data() (metadata.TextureData, error) {
	data, err := t.manager.Data(t.ID())
	if err != nil && !isLoading(err) {
		panic(fmt.Sprintf("%s: %s", t.Handle, err))
	}
	return data, err
}

func (t *Texture) State() metadata.TextureLoadState {
	state, err := t.manager.State(t.ID())
	if err != nil {
		panic(fmt.Sprintf("%s: %s", t.Handle, err))
	}
	return state
}

func (t *Texture) Manager() *TextureManager {
	return t.manager
}

func isLoading(err error) bool {
	return errors.Is(err, core.ErrLoading)
}
