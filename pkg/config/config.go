package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LocalConfigFile is the project-local settings filename.
const LocalConfigFile = "modman.toml"

//go:embed defaults.toml
var defaultsTOML []byte

// Settings holds everything modman reads from configuration.
type Settings struct {
	// GameDir is the game installation directory mods are managed in.
	GameDir string `toml:"game_dir,omitempty" mapstructure:"game_dir"`
	// RuntimeURL is where `runtime install` downloads the loader from when
	// no archive is given.
	RuntimeURL string `toml:"runtime_url,omitempty" mapstructure:"runtime_url"`
	UserAgent  string `toml:"user_agent,omitempty" mapstructure:"user_agent"`
	// PollInterval is a Go duration string, e.g. "5s".
	PollInterval string `toml:"poll_interval,omitempty" mapstructure:"poll_interval"`
	LogLevel     string `toml:"log_level,omitempty" mapstructure:"log_level"`
	LogJSON      bool   `toml:"log_json,omitempty" mapstructure:"log_json"`
}

// Defaults returns the settings compiled into the binary.
func Defaults() (*Settings, error) {
	return UnmarshalSettings(defaultsTOML)
}

func UnmarshalSettings(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

func (s *Settings) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}

// Poll returns the readiness poll interval. An empty value means zero,
// which callers treat as their default.
func (s *Settings) Poll() (time.Duration, error) {
	if s.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", s.PollInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid poll_interval %q: must not be negative", s.PollInterval)
	}
	return d, nil
}

func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return UnmarshalSettings(data)
}

func SaveFile(path string, s *Settings) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
