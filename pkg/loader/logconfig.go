package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ratmods/modman/pkg/layout"
	"github.com/ratmods/modman/pkg/store"
)

const (
	loggingSection = "[Logging]"
	listeningKey   = "UnityLogListening"
	listeningOff   = listeningKey + " = false"
)

// DisableLogListening turns off the runtime's engine-log listener in
// BepInEx.cfg, creating the file when it does not exist yet.
func DisableLogListening(root string) error {
	st := store.New(root)

	data, err := st.ReadFile(layout.ConfigFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", layout.ConfigFile, err)
	}

	if err := st.EnsureDir(path.Dir(layout.ConfigFile)); err != nil {
		return err
	}

	patched := PatchLogListening(string(data))
	if err := st.WriteFile([]byte(patched), 0o644, layout.ConfigFile); err != nil {
		return fmt.Errorf("writing %s: %w", layout.ConfigFile, err)
	}
	return nil
}

// PatchLogListening returns cfg with UnityLogListening disabled inside the
// [Logging] section. Section headers match case-insensitively. Every other
// line is kept as is and in order; a missing key is added at the end of the
// section and a missing section is appended.
func PatchLogListening(cfg string) string {
	eol := "\n"
	if strings.Contains(cfg, "\r\n") {
		eol = "\r\n"
	}

	var lines []string
	if cfg != "" {
		lines = strings.Split(strings.TrimSuffix(strings.ReplaceAll(cfg, "\r\n", "\n"), "\n"), "\n")
	}

	inLogging := false
	sectionFound := false
	insertAt := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if isSectionHeader(trimmed) {
			inLogging = strings.EqualFold(trimmed, loggingSection)
			if inLogging {
				sectionFound = true
				insertAt = i + 1
			}
			continue
		}
		if !inLogging {
			continue
		}
		if isListeningKey(trimmed) {
			lines[i] = listeningOff
			return strings.Join(lines, eol) + eol
		}
		if trimmed != "" {
			insertAt = i + 1
		}
	}

	if sectionFound {
		lines = append(lines[:insertAt], append([]string{listeningOff}, lines[insertAt:]...)...)
	} else {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, loggingSection, listeningOff)
	}
	return strings.Join(lines, eol) + eol
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")
}

func isListeningKey(line string) bool {
	key, _, ok := strings.Cut(line, "=")
	return ok && strings.EqualFold(strings.TrimSpace(key), listeningKey)
}
