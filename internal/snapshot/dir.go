package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSource reads collections from <Dir>/<collection>.json.
type DirSource struct {
	Dir string
}

// NewDirSource creates a DirSource.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

// Name returns the source name.
func (s *DirSource) Name() string { return "dir:" + s.Dir }

// Fetch reads a collection file. A missing file is an empty collection.
func (s *DirSource) Fetch(ctx context.Context, c Collection) ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.path(c)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Available returns the collections that have a file in Dir.
func (s *DirSource) Available() ([]Collection, error) {
	var found []Collection
	for _, c := range Collections {
		_, err := os.Stat(s.path(c))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", s.path(c), err)
		}
		found = append(found, c)
	}
	return found, nil
}

func (s *DirSource) path(c Collection) string {
	return filepath.Join(s.Dir, string(c)+".json")
}
