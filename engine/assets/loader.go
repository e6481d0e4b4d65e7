package assets

import (
	"io"

	"github.com/F3kilo/hex-war/engine/renderer/metadata"
)

// Loader turns the raw bytes of an asset into a resource. Loaders run on the
// task worker and must not touch any manager.
type Loader interface {
	Load(path string, r io.Reader) (*metadata.Resource, error)
}
