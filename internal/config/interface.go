package config

import "context"

// Loader is the interface for a configuration reader. Implementations turn a
// serialized source into arrangements; they do not resolve parameters.
type Loader interface {
	Load(ctx context.Context, path string) ([]*Arrangement, error)
}
