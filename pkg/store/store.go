package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ratmods/modman/pkg/archive"
)

const (
	dirPerm    = 0o755
	hashPrefix = "sha256:"
)

// ErrOutsideRoot is returned when a path resolves outside the store root.
var ErrOutsideRoot = errors.New("path is outside the game directory")

// Store is a filesystem tree rooted at a game installation directory.
// Segments may themselves contain forward slashes; they are converted to the
// host separator.
type Store interface {
	// Root returns the directory the store is rooted at.
	Root() string
	// Path returns the absolute filesystem path for the given segments
	// joined under the store root. Does not create or verify the path.
	Path(segments ...string) string
	// Exists reports whether the path at the given segments exists.
	// Paths outside the root fail with ErrOutsideRoot.
	Exists(segments ...string) (bool, error)
	// EnsureDir creates the directory at segments (starting at store root),
	// including parents.
	EnsureDir(segments ...string) error
	// RemoveFile deletes a single file. A missing file is reported as not
	// removed rather than as an error; a path outside the root is never
	// touched and fails with ErrOutsideRoot.
	RemoveFile(segments ...string) (bool, error)
	// PruneEmptyDirs removes every empty directory below segments, deepest
	// first, and returns how many were removed. Directories that cannot be
	// removed are left alone.
	PruneEmptyDirs(segments ...string) int
	// HashFiles computes a "sha256:<hex>" integrity hash over the given
	// relative paths and their contents, in the order given. Every path
	// must stay inside the root.
	HashFiles(rels []string) (string, error)
	// WriteFile writes data to the file at segments.
	// Parent directories must already exist.
	WriteFile(data []byte, perm os.FileMode, segments ...string) error
	// ReadFile reads the file at segments.
	ReadFile(segments ...string) ([]byte, error)
}

func New(root string) Store {
	return &store{root: root}
}

type store struct {
	root string
}

var _ Store = &store{}

func (s *store) Root() string {
	return s.root
}

func (s *store) Path(segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, s.root)
	for _, seg := range segments {
		parts = append(parts, filepath.FromSlash(seg))
	}
	return filepath.Join(parts...)
}

// contained resolves segments under the root and rejects anything that
// climbs out of it.
func (s *store) contained(segments ...string) (string, error) {
	p, err := archive.SafeJoin(s.root, path.Join(segments...))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutsideRoot, err)
	}
	return p, nil
}

func (s *store) Exists(segments ...string) (bool, error) {
	p, err := s.contained(segments...)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (s *store) EnsureDir(segments ...string) error {
	dir := s.Path(segments...)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

func (s *store) RemoveFile(segments ...string) (bool, error) {
	p, err := s.contained(segments...)
	if err != nil {
		return false, err
	}
	err = os.Remove(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (s *store) PruneEmptyDirs(segments ...string) int {
	base := s.Path(segments...)

	var dirs []string
	filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deepest first so a parent emptied by its children's removal goes too.
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(filepath.Separator)) > strings.Count(dirs[j], string(filepath.Separator))
	})

	removed := 0
	for _, dir := range dirs {
		if os.Remove(dir) == nil {
			removed++
		}
	}
	return removed
}

func (s *store) HashFiles(rels []string) (string, error) {
	h := sha256.New()
	for _, rel := range rels {
		p, err := s.contained(rel)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(rel))
		h.Write(data)
	}
	return hashPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

func (s *store) WriteFile(data []byte, perm os.FileMode, segments ...string) error {
	return os.WriteFile(s.Path(segments...), data, perm)
}

func (s *store) ReadFile(segments ...string) ([]byte, error) {
	return os.ReadFile(s.Path(segments...))
}
