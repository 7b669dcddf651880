package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettings(t *testing.T) {
	yes := true

	tests := map[string]struct {
		global    string
		local     string
		env       map[string]string
		flags     Overrides
		wantDir   string
		wantUA    string
		wantLevel string
		wantJSON  bool
		wantErr   bool
	}{
		"defaults only": {
			wantDir:   `C:\Program Files (x86)\Steam\steamapps\common\Restaurats`,
			wantUA:    "restaurats-mod-manager",
			wantLevel: "info",
		},
		"global overrides defaults": {
			global:    "game_dir = \"/global/game\"\nlog_level = \"debug\"\n",
			wantDir:   "/global/game",
			wantUA:    "restaurats-mod-manager",
			wantLevel: "debug",
		},
		"local merges over global": {
			global:    "game_dir = \"/global/game\"\nlog_level = \"debug\"\n",
			local:     "game_dir = \"/local/game\"\n",
			wantDir:   "/local/game",
			wantUA:    "restaurats-mod-manager",
			wantLevel: "debug",
		},
		"env overrides files": {
			local:     "game_dir = \"/local/game\"\n",
			env:       map[string]string{"MODMAN_GAME_DIR": "/env/game", "MODMAN_USER_AGENT": "curl"},
			wantDir:   "/env/game",
			wantUA:    "curl",
			wantLevel: "info",
		},
		"flags override everything": {
			local:     "game_dir = \"/local/game\"\n",
			env:       map[string]string{"MODMAN_GAME_DIR": "/env/game"},
			flags:     Overrides{GameDir: "/flag/game", LogLevel: "warn", LogJSON: &yes},
			wantDir:   "/flag/game",
			wantUA:    "restaurats-mod-manager",
			wantLevel: "warn",
			wantJSON:  true,
		},
		"malformed local file": {
			local:   "game_dir = \n",
			wantErr: true,
		},
		"invalid poll interval": {
			local:   "poll_interval = \"whenever\"\n",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			globalPath := filepath.Join(dir, "global-config.toml")
			localPath := filepath.Join(dir, LocalConfigFile)

			if tc.global != "" {
				writeTestConfig(t, globalPath, tc.global)
			}
			if tc.local != "" {
				writeTestConfig(t, localPath, tc.local)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			s, err := loadSettings(tc.flags, globalPath, localPath)
			if (err != nil) != tc.wantErr {
				t.Fatalf("loadSettings() error = %v, wantErr = %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}

			if s.GameDir != tc.wantDir {
				t.Errorf("GameDir = %q, want %q", s.GameDir, tc.wantDir)
			}
			if s.UserAgent != tc.wantUA {
				t.Errorf("UserAgent = %q, want %q", s.UserAgent, tc.wantUA)
			}
			if s.LogLevel != tc.wantLevel {
				t.Errorf("LogLevel = %q, want %q", s.LogLevel, tc.wantLevel)
			}
			if s.LogJSON != tc.wantJSON {
				t.Errorf("LogJSON = %v, want %v", s.LogJSON, tc.wantJSON)
			}
			if s.RuntimeURL == "" {
				t.Error("RuntimeURL should fall back to the embedded default")
			}
		})
	}
}

func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
