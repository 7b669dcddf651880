package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MODMAN_GAME_DIR.
const EnvPrefix = "MODMAN"

// Overrides carries values set on the command line. Empty fields are not
// applied.
type Overrides struct {
	GameDir  string
	LogLevel string
	LogJSON  *bool
}

// LoadSettings resolves settings using Viper's merge semantics:
// CLI flags > MODMAN_* env > modman.toml (working directory) >
// ~/.modman/config.toml > embedded defaults.
func LoadSettings(flags Overrides) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	globalPath := filepath.Join(home, ".modman", "config.toml")
	return loadSettings(flags, globalPath, LocalConfigFile)
}

// loadSettings is the internal implementation that accepts explicit paths,
// making it testable without touching the real home directory.
func loadSettings(flags Overrides, globalPath, localPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("toml")

	// Lowest priority: embedded defaults
	if err := v.ReadConfig(bytes.NewReader(defaultsTOML)); err != nil {
		return nil, fmt.Errorf("reading embedded defaults: %w", err)
	}

	for _, path := range []string{globalPath, localPath} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Highest priority: CLI flags
	if flags.GameDir != "" {
		v.Set("game_dir", flags.GameDir)
	}
	if flags.LogLevel != "" {
		v.Set("log_level", flags.LogLevel)
	}
	if flags.LogJSON != nil {
		v.Set("log_json", *flags.LogJSON)
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	if _, err := s.Poll(); err != nil {
		return nil, err
	}
	return s, nil
}

// GlobalConfigDir returns the path to ~/.modman, creating it if necessary.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	dir := filepath.Join(home, ".modman")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// WriteLocalSettings persists settings to modman.toml in dir.
func WriteLocalSettings(dir string, s *Settings) error {
	return SaveFile(filepath.Join(dir, LocalConfigFile), s)
}

// WriteGlobalSettings persists settings to ~/.modman/config.toml.
func WriteGlobalSettings(s *Settings) error {
	dir, err := GlobalConfigDir()
	if err != nil {
		return err
	}
	return SaveFile(filepath.Join(dir, "config.toml"), s)
}
