package installer

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ratmods/modman/pkg/archive"
	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/manifest"
	"github.com/ratmods/modman/pkg/modmeta"
	"github.com/ratmods/modman/pkg/outcome"
	"github.com/ratmods/modman/pkg/store"
	"github.com/rs/zerolog"
)

const (
	OpSaveManifest      = "save manifest"
	OpHashFiles         = "hash installed files"
	OpFallbackCollision = "fallback collision"
	OpRemoveFile        = "remove file"

	defaultID = "mod"
)

var (
	// ErrNothingInstallable is returned when an archive holds no entry that
	// maps into the game directory and no native library to fall back on.
	ErrNothingInstallable = errors.New("no installable files found in archive")
	// ErrUnsupportedFile is returned for anything that is neither a zip
	// archive nor a native library.
	ErrUnsupportedFile = errors.New("only .zip or .dll files are supported")
)

// Installer installs and removes mod packages in one game directory and
// keeps the manifest in step. It is not safe for concurrent use.
type Installer struct {
	Store    store.Store
	Manifest *manifest.Manifest
	Log      zerolog.Logger
}

// Result describes a completed install.
type Result struct {
	Entry manifest.PackageEntry
	// Replaced is set when an entry with the same id was already installed.
	Replaced bool
	Warnings outcome.Warnings
}

// placement is one archive entry scheduled to be written at rel.
type placement struct {
	entry archive.Entry
	rel   string
}

// Install dispatches on the file extension: zip archives go through
// InstallArchive, native libraries through InstallLibrary.
func (inst *Installer) Install(path string) (*Result, error) {
	switch {
	case layout.HasExt(path, layout.ArchiveExt):
		return inst.InstallArchive(path)
	case layout.HasExt(path, layout.NativeLibraryExt):
		return inst.InstallLibrary(path)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFile)
	}
}

// InstallArchive installs the mod archive at path. The package id is the
// archive file name without extension.
func (inst *Installer) InstallArchive(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return inst.InstallArchiveBytes(PackageID(path), data, path)
}

// InstallArchiveBytes installs a mod archive held in memory under id.
// source is informational and stored as-is in the manifest.
//
// Entries are placed with layout.MapEntry. When that places no file at all,
// every native library in the archive is copied flat into the plugin
// directory instead. If neither yields a file, ErrNothingInstallable is
// returned and nothing is written.
func (inst *Installer) InstallArchiveBytes(id string, data []byte, source string) (*Result, error) {
	log := inst.Log.With().Str("component", "installer").Str("op", "install").Str("package", id).Logger()

	a, err := archive.Open(data)
	if err != nil {
		log.Error().Err(err).Msg("Could not open package archive")
		return nil, fmt.Errorf("opening package %q: %w", id, err)
	}
	entries := a.Entries()

	meta := readMeta(entries, log)

	res := &Result{}
	plan, files := planMapped(entries)
	if len(files) == 0 {
		var fallback []placement
		fallback, files = planFallback(entries, &res.Warnings)
		plan = append(plan, fallback...)
		if len(files) > 0 {
			log.Debug().Int("files", len(files)).Msg("No mapped entries, using native library fallback")
		}
	}
	if len(files) == 0 {
		log.Warn().Msg("Package has nothing installable")
		return nil, fmt.Errorf("package %q: %w", id, ErrNothingInstallable)
	}

	if err := inst.Store.EnsureDir(layout.PluginsDir); err != nil {
		return nil, err
	}
	for _, p := range plan {
		if err := p.entry.ExtractTo(inst.Store.Root(), p.rel); err != nil {
			log.Error().Err(err).Str("entry", p.entry.Name).Msg("Package extraction failed")
			return nil, fmt.Errorf("installing package %q: %w", id, err)
		}
	}

	name := meta.Name
	if name == "" {
		name = id
	}
	res.Entry = manifest.PackageEntry{
		ID:             id,
		Name:           name,
		Version:        meta.Version,
		SourceZip:      source,
		InstalledFiles: files,
	}
	inst.commit(res, log)
	return res, nil
}

// InstallLibrary copies a loose native library straight into the plugin
// directory and registers it as a single-file package.
func (inst *Installer) InstallLibrary(path string) (*Result, error) {
	id := PackageID(path)
	log := inst.Log.With().Str("component", "installer").Str("op", "install").Str("package", id).Logger()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	rel := layout.PluginPath(filepath.Base(path))
	if err := inst.Store.EnsureDir(layout.PluginsDir); err != nil {
		return nil, err
	}
	if err := inst.Store.WriteFile(data, 0o644, rel); err != nil {
		log.Error().Err(err).Msg("Could not copy library")
		return nil, fmt.Errorf("copying %s: %w", filepath.Base(path), err)
	}

	res := &Result{
		Entry: manifest.PackageEntry{
			ID:             id,
			Name:           filepath.Base(path),
			SourceZip:      path,
			InstalledFiles: []string{rel},
		},
	}
	inst.commit(res, log)
	return res, nil
}

// commit records the entry in the manifest and persists it. Hashing and
// saving are best-effort.
func (inst *Installer) commit(res *Result, log zerolog.Logger) {
	integrity, err := inst.Store.HashFiles(res.Entry.InstalledFiles)
	res.Warnings.Add(OpHashFiles, err)
	res.Entry.Integrity = integrity

	res.Replaced = inst.Manifest.Put(res.Entry)

	if err := inst.saveManifest(); err != nil {
		log.Warn().Err(err).Msg("Could not save manifest")
		res.Warnings.Add(OpSaveManifest, err)
	}

	log.Info().
		Str("name", res.Entry.Name).
		Str("version", res.Entry.Version).
		Int("files", len(res.Entry.InstalledFiles)).
		Bool("replaced", res.Replaced).
		Msg("Package installed")
}

// PackageID derives a package id from an archive or library path.
func PackageID(p string) string {
	base := filepath.Base(filepath.FromSlash(p))
	id := strings.TrimSuffix(base, filepath.Ext(base))
	if id == "" || id == "." || id == string(filepath.Separator) {
		return defaultID
	}
	return id
}

func readMeta(entries []archive.Entry, log zerolog.Logger) modmeta.Meta {
	var meta modmeta.Meta
	for _, e := range entries {
		if e.IsDir || !modmeta.IsMetadataFile(e.Name) {
			continue
		}
		data, err := e.ReadAll(modmeta.MaxSize)
		if err != nil {
			log.Debug().Err(err).Str("entry", e.Name).Msg("Skipping unreadable metadata")
			continue
		}
		meta = meta.Merge(modmeta.Parse(e.Name, data))
	}
	return meta
}

// planMapped places every entry layout.MapEntry accepts and returns the
// distinct file paths that will be written.
func planMapped(entries []archive.Entry) ([]placement, []string) {
	var plan []placement
	seen := make(map[string]bool)
	var files []string
	for _, e := range entries {
		rel, ok := layout.MapEntry(e.Name)
		if !ok {
			continue
		}
		plan = append(plan, placement{entry: e, rel: rel})
		if e.IsDir {
			continue
		}
		rel = path.Clean(rel)
		if !seen[rel] {
			seen[rel] = true
			files = append(files, rel)
		}
	}
	return plan, files
}

// planFallback flattens every native library into the plugin directory.
// Two libraries with the same base name collide; the later one wins and the
// collision is reported as a warning.
func planFallback(entries []archive.Entry, warnings *outcome.Warnings) ([]placement, []string) {
	var plan []placement
	from := make(map[string]string)
	var files []string
	for _, e := range entries {
		if e.IsDir || !layout.HasExt(e.Name, layout.NativeLibraryExt) {
			continue
		}
		rel := layout.PluginPath(e.Name)
		if prev, ok := from[rel]; ok {
			warnings.Add(OpFallbackCollision, fmt.Errorf("%s from %q overwrites %q", rel, e.Name, prev))
		} else {
			files = append(files, rel)
		}
		from[rel] = e.Name
		plan = append(plan, placement{entry: e, rel: rel})
	}
	return plan, files
}
