package installer

import (
	"errors"

	"github.com/ratmods/modman/pkg/manifest"
	"github.com/ratmods/modman/pkg/store"
)

// Drift is the difference between a manifest entry and the files on disk.
type Drift struct {
	Entry   manifest.PackageEntry
	Missing []string
	// Outside lists recorded paths that point outside the game directory.
	// They are neither checked nor hashed.
	Outside []string
	// Modified is set when all files are present but their content no
	// longer matches the recorded integrity hash.
	Modified bool
	// Unchecked is set for entries installed without an integrity hash.
	Unchecked bool
}

// OK reports whether the entry matches the disk.
func (d Drift) OK() bool {
	return len(d.Missing) == 0 && len(d.Outside) == 0 && !d.Modified
}

// Verify checks every installed package against the filesystem.
func (inst *Installer) Verify() ([]Drift, error) {
	drifts := make([]Drift, 0, len(inst.Manifest.Mods))
	for _, e := range inst.Manifest.Mods {
		d, err := inst.verifyEntry(e)
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, nil
}

func (inst *Installer) verifyEntry(e manifest.PackageEntry) (Drift, error) {
	d := Drift{Entry: e}
	for _, rel := range e.InstalledFiles {
		ok, err := inst.Store.Exists(rel)
		if errors.Is(err, store.ErrOutsideRoot) {
			d.Outside = append(d.Outside, rel)
			continue
		}
		if err != nil {
			return d, err
		}
		if !ok {
			d.Missing = append(d.Missing, rel)
		}
	}
	if len(d.Missing) > 0 || len(d.Outside) > 0 {
		return d, nil
	}
	if e.Integrity == "" {
		d.Unchecked = true
		return d, nil
	}

	got, err := inst.Store.HashFiles(e.InstalledFiles)
	if err != nil {
		return d, err
	}
	d.Modified = got != e.Integrity
	return d, nil
}
