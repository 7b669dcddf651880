package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// MaxDownloadSize caps how much an HTTPSource will read.
const MaxDownloadSize = 512 << 20

const defaultArchiveName = "download.zip"

var ErrTooLarge = errors.New("download exceeds size limit")

// HTTPSource downloads an archive with a GET request.
type HTTPSource struct {
	URL       string
	UserAgent string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

var _ Source = &HTTPSource{}

func (h *HTTPSource) Fetch(ctx context.Context) (*Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", h.URL, err)
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", h.URL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", h.URL, err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("downloading %s: %w", h.URL, ErrTooLarge)
	}

	return &Fetched{
		Name:   archiveName(h.URL),
		Origin: h.URL,
		Data:   data,
	}, nil
}

// archiveName returns the unescaped last path segment of rawURL.
func archiveName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultArchiveName
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return defaultArchiveName
	}
	return base
}
