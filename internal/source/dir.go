package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/domain"
)

type dirSource struct {
	dir string
	fs  adapter.FileSystem
}

// NewDirSource creates a source reading <dir>/<dataset>.csv.
// The revision is the file modification time.
func NewDirSource(dir string, fsys adapter.FileSystem) Source {
	return &dirSource{dir: dir, fs: fsys}
}

func (s *dirSource) Fetch(ctx context.Context, dataset string) (*Extract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, dataset+".csv")
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: extract not found at %s", domain.ErrMalformedExtract, dataset, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnreachable, dataset, err)
	}

	body, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnreachable, dataset, err)
	}

	return &Extract{
		Dataset:   dataset,
		Body:      body,
		Revision:  info.ModTime().UTC().Format(time.RFC3339),
		FetchedAt: time.Now().UTC(),
	}, nil
}
