package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Backend string
	Dir     string // file backend root
	Redis   RedisOptions
}

// Open returns the backend named by opts.Backend. An empty name means file.
func Open(ctx context.Context, opts OpenOptions) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, opts.Redis)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
