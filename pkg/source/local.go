package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type LocalSource struct {
	Path string
}

var _ Source = &LocalSource{}

func (l *LocalSource) Fetch(ctx context.Context) (*Fetched, error) {
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path for %q: %w", l.Path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("local archive does not exist: %s", absPath)
		}
		return nil, fmt.Errorf("checking local archive %s: %w", absPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("local archive is a directory: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", absPath, err)
	}

	return &Fetched{
		Name:   filepath.Base(absPath),
		Origin: absPath,
		Data:   data,
	}, nil
}
