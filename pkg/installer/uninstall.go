package installer

import (
	"fmt"

	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/manifest"
	"github.com/ratmods/modman/pkg/outcome"
)

// UninstallResult describes a completed uninstall.
type UninstallResult struct {
	Entry manifest.PackageEntry
	// Removed lists the recorded files that were actually deleted.
	Removed []string
	// Pruned is the number of empty directories removed afterwards.
	Pruned   int
	Warnings outcome.Warnings
}

// Nothing reports whether none of the recorded files were present.
func (r *UninstallResult) Nothing() bool {
	return len(r.Removed) == 0
}

// Uninstall removes the package at position idx in the manifest: every
// recorded file that still exists is deleted, empty directories under the
// runtime directory are pruned and the entry is dropped. Recorded paths that
// leave the game directory are skipped with an OpRemoveFile warning. An index out of
// range is a no-op and reports false.
func (inst *Installer) Uninstall(idx int) (*UninstallResult, bool) {
	if idx < 0 || idx >= len(inst.Manifest.Mods) {
		return nil, false
	}
	entry := inst.Manifest.Mods[idx]
	log := inst.Log.With().Str("component", "installer").Str("op", "uninstall").Str("package", entry.ID).Logger()

	res := &UninstallResult{Entry: entry}
	for _, rel := range entry.InstalledFiles {
		removed, err := inst.Store.RemoveFile(rel)
		if err != nil {
			log.Warn().Err(err).Str("file", rel).Msg("Not removing recorded file")
			res.Warnings.Add(OpRemoveFile, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		if removed {
			res.Removed = append(res.Removed, rel)
		}
	}
	res.Pruned = inst.Store.PruneEmptyDirs(layout.RuntimeDir)

	inst.Manifest.RemoveAt(idx)
	if err := inst.saveManifest(); err != nil {
		log.Warn().Err(err).Msg("Could not save manifest")
		res.Warnings.Add(OpSaveManifest, err)
	}

	log.Info().
		Int("removed", len(res.Removed)).
		Int("recorded", len(entry.InstalledFiles)).
		Int("pruned", res.Pruned).
		Msg("Package uninstalled")
	return res, true
}

// UninstallID uninstalls the package with the given id.
func (inst *Installer) UninstallID(id string) (*UninstallResult, bool) {
	return inst.Uninstall(inst.Manifest.Index(id))
}

func (inst *Installer) saveManifest() error {
	return manifest.Save(inst.Store.Root(), inst.Manifest)
}
