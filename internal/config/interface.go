package config

import "context"

// Loader is the interface for a format-specific build file loader.
type Loader interface {
	// Load reads the build file at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*BuildFile, error)
}
