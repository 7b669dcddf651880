// Package manifest persists which packages are installed into a game
// directory and which files each of them owns.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ratmods/modman/pkg/layout"
)

const filePerm = 0o644

// PackageEntry records one installed package. InstalledFiles is the only
// authoritative record of what the package owns.
type PackageEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version,omitempty"`
	SourceZip      string   `json:"source_zip,omitempty"`
	InstalledFiles []string `json:"installed_files"`
	// Integrity is a "sha256:<hex>" hash over InstalledFiles taken at install time.
	Integrity string `json:"integrity,omitempty"`
}

// DisplayName returns Name, or ID when no name was recorded.
func (e PackageEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Manifest is the ordered list of installed packages. It is a log of what
// installs did, not a reconciliation of what is on disk.
type Manifest struct {
	Mods []PackageEntry `json:"mods"`
}

// Path returns the manifest location for a game directory.
func Path(root string) string {
	return layout.Abs(root, layout.IndexFile)
}

// Load reads the manifest for root. A missing or unreadable manifest yields
// an empty one.
func Load(root string) *Manifest {
	m, err := LoadFile(Path(root))
	if err != nil {
		return &Manifest{}
	}
	return m
}

// LoadFile reads and parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// Save writes m for root, creating parent directories as needed.
func Save(root string, m *Manifest) error {
	return SaveFile(Path(root), m)
}

// SaveFile writes m to path, creating parent directories as needed.
func SaveFile(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Index returns the position of the entry with id, or -1.
func (m *Manifest) Index(id string) int {
	for i, e := range m.Mods {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the entry with id.
func (m *Manifest) Get(id string) (PackageEntry, bool) {
	if i := m.Index(id); i >= 0 {
		return m.Mods[i], true
	}
	return PackageEntry{}, false
}

// Put removes every entry sharing e's id and appends e. It reports whether
// an older entry was replaced.
func (m *Manifest) Put(e PackageEntry) bool {
	replaced := false
	kept := m.Mods[:0]
	for _, old := range m.Mods {
		if old.ID == e.ID {
			replaced = true
			continue
		}
		kept = append(kept, old)
	}
	m.Mods = append(kept, e)
	return replaced
}

// RemoveAt deletes and returns the entry at i. It reports false when i is
// out of range.
func (m *Manifest) RemoveAt(i int) (PackageEntry, bool) {
	if i < 0 || i >= len(m.Mods) {
		return PackageEntry{}, false
	}
	e := m.Mods[i]
	m.Mods = append(m.Mods[:i], m.Mods[i+1:]...)
	return e, true
}
