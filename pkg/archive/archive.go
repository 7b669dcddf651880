// Package archive reads zip archives held in memory and writes their entries
// into a destination directory tree.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ratmods/modman/pkg/layout"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrUnreadable is returned when the bytes are not a readable zip archive.
var ErrUnreadable = errors.New("unreadable archive")

// EntryError reports a failure while reading or writing a single entry.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("archive entry %q: %v", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// IsArchiveError reports whether err came from reading or extracting an archive.
func IsArchiveError(err error) bool {
	var ee *EntryError
	return errors.Is(err, ErrUnreadable) || errors.As(err, &ee)
}

// Archive is an opened zip archive.
type Archive struct {
	zr *zip.Reader
}

// Entry is a single named member of an Archive.
type Entry struct {
	// Name is the raw name stored in the archive.
	Name  string
	IsDir bool
	file  *zip.File
}

// Open parses data as a zip archive.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &Archive{zr: zr}, nil
}

// Entries returns the entries in archive order. Entries with an empty name
// are left out.
func (a *Archive) Entries() []Entry {
	entries := make([]Entry, 0, len(a.zr.File))
	for _, f := range a.zr.File {
		if f.Name == "" {
			continue
		}
		entries = append(entries, Entry{
			Name:  f.Name,
			IsDir: layout.IsDirEntry(f.Name),
			file:  f,
		})
	}
	return entries
}

// Open returns a reader over the decompressed entry content.
func (e Entry) Open() (io.ReadCloser, error) {
	rc, err := e.file.Open()
	if err != nil {
		return nil, &EntryError{Entry: e.Name, Err: err}
	}
	return rc, nil
}

// ReadAll returns at most limit bytes of the entry content.
func (e Entry) ReadAll(limit int64) ([]byte, error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, &EntryError{Entry: e.Name, Err: err}
	}
	return data, nil
}

// ExtractTo materializes the entry at rel under root. Directory entries create
// the directory; file entries create ancestors and overwrite the target.
func (e Entry) ExtractTo(root, rel string) error {
	dest, err := SafeJoin(root, rel)
	if err != nil {
		return &EntryError{Entry: e.Name, Err: err}
	}

	if e.IsDir {
		if err := os.MkdirAll(dest, dirPerm); err != nil {
			return &EntryError{Entry: e.Name, Err: err}
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), dirPerm); err != nil {
		return &EntryError{Entry: e.Name, Err: err}
	}

	rc, err := e.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return &EntryError{Entry: e.Name, Err: err}
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return &EntryError{Entry: e.Name, Err: err}
	}
	if err := out.Close(); err != nil {
		return &EntryError{Entry: e.Name, Err: err}
	}
	return nil
}

// Extract writes every entry of a into root using the entry names as
// relative paths. It stops at the first failure and leaves whatever was
// already written in place.
func (a *Archive) Extract(root string) error {
	for _, e := range a.Entries() {
		if err := e.ExtractTo(root, layout.Normalize(e.Name)); err != nil {
			return err
		}
	}
	return nil
}

// Extract opens data as a zip archive and extracts it into root.
func Extract(data []byte, root string) error {
	a, err := Open(data)
	if err != nil {
		return err
	}
	return a.Extract(root)
}

// SafeJoin joins a slash-separated relative path onto root and rejects
// results that would escape root.
func SafeJoin(root, rel string) (string, error) {
	rel = layout.Normalize(rel)
	if filepath.IsAbs(filepath.FromSlash(rel)) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("absolute path %q not allowed", rel)
	}

	dest := layout.Abs(root, rel)
	within, err := filepath.Rel(root, dest)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", rel, err)
	}
	if within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes destination", rel)
	}
	return dest, nil
}
