// Package loader installs and inspects the BepInEx plugin-loader runtime in
// a game directory.
package loader

import (
	"errors"
	"fmt"
	"time"

	"github.com/ratmods/modman/pkg/archive"
	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/outcome"
	"github.com/ratmods/modman/pkg/store"
	"github.com/rs/zerolog"
)

const (
	StatusInstalled    = "Installed"
	StatusNotInstalled = "Not installed"

	// OpPatchConfig names the soft failure recorded when BepInEx.cfg
	// could not be patched.
	OpPatchConfig = "patch log config"
)

var (
	// ErrValidation is wrapped by every post-extraction validation failure.
	ErrValidation = errors.New("runtime validation failed")

	ErrCoreMissing = fmt.Errorf("%w: %s or %s not found after extraction",
		ErrValidation, layout.CoreLibrary, layout.CoreLibraryAlt)
	ErrCompanionMissing = fmt.Errorf("%w: %s not found in game directory after extraction",
		ErrValidation, layout.CompanionFile)
)

// IsInstalled reports whether the runtime core library is present under root.
func IsInstalled(root string) bool {
	ok, _ := store.New(root).Exists(layout.CoreLibrary)
	return ok
}

// Status returns a human readable installation status for root.
func Status(root string) string {
	if IsInstalled(root) {
		return StatusInstalled
	}
	return StatusNotInstalled
}

// Validate checks that an extracted runtime has a core library and the
// companion loader next to the game executable.
func Validate(root string) error {
	s := store.New(root)

	core, err := s.Exists(layout.CoreLibrary)
	if err != nil {
		return fmt.Errorf("checking %s: %w", layout.CoreLibrary, err)
	}
	coreAlt, err := s.Exists(layout.CoreLibraryAlt)
	if err != nil {
		return fmt.Errorf("checking %s: %w", layout.CoreLibraryAlt, err)
	}
	if !core && !coreAlt {
		return ErrCoreMissing
	}

	companion, err := s.Exists(layout.CompanionFile)
	if err != nil {
		return fmt.Errorf("checking %s: %w", layout.CompanionFile, err)
	}
	if !companion {
		return ErrCompanionMissing
	}
	return nil
}

// Installer extracts a runtime archive into a game directory.
type Installer struct {
	Root string
	Log  zerolog.Logger
}

// Install extracts the runtime archive verbatim into the game directory,
// disables engine-log listening and validates the result. Extraction errors
// are archive errors; a result that extracted but looks wrong fails with
// ErrValidation. The config patch never fails the install; its failure is
// returned as a warning.
func (inst *Installer) Install(data []byte) (outcome.Warnings, error) {
	start := time.Now()
	log := inst.Log.With().Str("component", "loader").Str("op", "install").Logger()

	var warnings outcome.Warnings

	if err := archive.Extract(data, inst.Root); err != nil {
		log.Error().Err(err).Msg("Runtime extraction failed")
		return warnings, fmt.Errorf("extracting runtime: %w", err)
	}

	if err := DisableLogListening(inst.Root); err != nil {
		log.Warn().Err(err).Msg("Could not patch runtime log config")
		warnings.Add(OpPatchConfig, err)
	}

	if err := Validate(inst.Root); err != nil {
		log.Error().Err(err).Msg("Runtime validation failed")
		return warnings, err
	}

	log.Info().
		Int("duration_ms", int(time.Since(start).Milliseconds())).
		Msg("Runtime installed and validated")
	return warnings, nil
}
