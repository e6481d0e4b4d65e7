package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/F3kilo/hex-war/engine/assets/loaders"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/renderer/metadata"
	"github.com/fsnotify/fsnotify"
	"github.com/pierrec/lz4"
)

const lz4Ext = ".lz4"

type AssetInfo struct {
	// Path relative to the asset root, slash separated.
	Path       string
	Type       metadata.ResourceType
	Compressed bool
	LastSeen   time.Time
}

// AssetManager indexes the asset root and opens assets for the loaders. It is
// safe for concurrent use: the task worker loads while the owner goroutine
// looks assets up.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	isClosed bool
}

func NewAssetManager(cfg core.AssetsConfig) (*AssetManager, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	s, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("asset root: %w", err)
	}
	if !s.IsDir() {
		return nil, fmt.Errorf("asset root '%s' is not a directory", root)
	}

	am := &AssetManager{
		root:    root,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
	}
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeGeometry, &loaders.GeometryLoader{})

	if cfg.Watch {
		fsWatch, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		am.fsnotify = fsWatch
		am.done = make(chan struct{})
		am.stopped = make(chan struct{})
		go am.start()
	}

	if err := am.watchRecursive(root); err != nil {
		am.Close()
		return nil, err
	}

	core.LogInfo("asset manager initialized on %s (%d assets, watch=%t)", root, am.Len(), cfg.Watch)
	return am, nil
}

func (am *AssetManager) Root() string { return am.root }

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Lookup finds an asset by a root-relative or absolute path. Files that
// appeared before the watcher reported them are indexed on the spot.
func (am *AssetManager) Lookup(path string) (AssetInfo, error) {
	key, err := am.key(path)
	if err != nil {
		return AssetInfo{}, err
	}

	am.mutex.RLock()
	asset, exists := am.assets[key]
	am.mutex.RUnlock()
	if exists {
		return asset, nil
	}

	s, err := os.Stat(filepath.Join(am.root, filepath.FromSlash(key)))
	if err != nil || s.IsDir() {
		return AssetInfo{}, fmt.Errorf("%w: asset '%s'", core.ErrNotFound, path)
	}
	if !am.handleFileEvent(key) {
		return AssetInfo{}, fmt.Errorf("%w: asset '%s'", core.ErrUnsupportedFormat, path)
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.assets[key], nil
}

// Check looks an asset up and verifies that it has the expected type.
func (am *AssetManager) Check(path string, want metadata.ResourceType) (AssetInfo, error) {
	asset, err := am.Lookup(path)
	if err != nil {
		return AssetInfo{}, err
	}
	if asset.Type != want {
		return AssetInfo{}, fmt.Errorf("%w: '%s' is %s, want %s", core.ErrUnsupportedFormat, path, asset.Type, want)
	}
	return asset, nil
}

// Indexed reports whether the index currently knows the path, without
// falling back to the filesystem.
func (am *AssetManager) Indexed(path string) bool {
	key, err := am.key(path)
	if err != nil {
		return false
	}
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, ok := am.assets[key]
	return ok
}

// Assets returns the indexed asset paths, sorted.
func (am *AssetManager) Assets() []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]string, 0, len(am.assets))
	for p := range am.assets {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Open returns a reader over the asset bytes; *.lz4 assets are decompressed
// transparently.
func (am *AssetManager) Open(path string) (io.ReadCloser, error) {
	asset, err := am.Lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(am.root, filepath.FromSlash(asset.Path)))
	if err != nil {
		return nil, err
	}
	if !asset.Compressed {
		return f, nil
	}
	return &compressedFile{Reader: lz4.NewReader(f), file: f}, nil
}

// LoadAsset opens the asset and runs the loader registered for its type.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType) (*metadata.Resource, error) {
	asset, err := am.Check(path, resourceType)
	if err != nil {
		return nil, err
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}

	r, err := am.Open(asset.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res, err := loader.Load(asset.Path, r)
	if err != nil {
		return nil, err
	}
	core.LogDebug("loaded %s asset %s (%d bytes)", asset.Type, asset.Path, res.DataSize)
	return res, nil
}

func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if am.fsnotify == nil {
		return nil
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) key(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(am.root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: '%s' is outside the asset root", core.ErrNotFound, path)
		}
		path = rel
	}
	key := filepath.ToSlash(filepath.Clean(path))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", fmt.Errorf("%w: '%s' is outside the asset root", core.ErrNotFound, path)
	}
	return key, nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("can't watch new directory %s: %s", e.Name, err)
					}
				}
				continue
			}
			key, err := am.key(e.Name)
			if err != nil {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(key)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(key)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogWarn("can't close asset watcher: %s", err)
			}
			return
		}
	}
}

// watchRecursive indexes every file under path and, when watching, adds all
// directories to the watch list. A file added before its directory watch is
// registered is still found by Lookup.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		if key, err := am.key(walkPath); err == nil {
			am.handleFileEvent(key)
		}
		return nil
	})
}

// Handle the creation or modification of a file. Reports whether the file is
// a known asset type.
func (am *AssetManager) handleFileEvent(key string) bool {
	assetType, compressed := determineAssetType(key)
	if assetType == metadata.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[key] = AssetInfo{
		Path:       key,
		Type:       assetType,
		Compressed: compressed,
		LastSeen:   time.Now(),
	}
	return true
}

// Remove the asset from the index if it was deleted. A removed directory takes
// everything below it along.
func (am *AssetManager) removeAsset(key string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, key)
	prefix := key + "/"
	for p := range am.assets {
		if strings.HasPrefix(p, prefix) {
			delete(am.assets, p)
		}
	}
}

func determineAssetType(path string) (metadata.ResourceType, bool) {
	name := strings.ToLower(path)
	compressed := strings.HasSuffix(name, lz4Ext)
	name = strings.TrimSuffix(name, lz4Ext)

	if strings.HasSuffix(name, ".geom.toml") {
		return metadata.ResourceTypeGeometry, compressed
	}
	switch filepath.Ext(name) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage, compressed
	default:
		return metadata.ResourceTypeNone, compressed
	}
}

type compressedFile struct {
	*lz4.Reader
	file *os.File
}

func (c *compressedFile) Close() error {
	return c.file.Close()
}
