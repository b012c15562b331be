package snapshot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/receivables/internal/config"
)

// Open builds the Source described by cfg. Relative directories are
// resolved against baseDir. The returned close function releases any
// connections and is never nil.
func Open(ctx context.Context, cfg config.SourceConfig, baseDir string) (Source, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Type) {
	case config.SourceDir:
		dir := cfg.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		return NewDirSource(dir), noop, nil

	case config.SourceHTTP:
		return NewHTTPSource(cfg.BaseURL, cfg.Token, cfg.Timeout), noop, nil

	case config.SourcePostgres:
		pool, err := NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to database: %w", err)
		}
		return NewPostgresSource(pool, cfg.Table), pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnsupportedSource, cfg.Type)
	}
}
