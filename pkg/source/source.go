// Package source fetches archive bytes from the places a user can point at:
// a file on disk or an HTTP(S) URL.
package source

import (
	"context"
)

type Source interface {
	// Fetch retrieves the archive content. The result is held in memory;
	// installers only ever consume the bytes.
	Fetch(ctx context.Context) (*Fetched, error)
}

type Fetched struct {
	Name   string // File name the archive is known by, used to derive package ids
	Origin string // Path or URL it came from
	Data   []byte
}
