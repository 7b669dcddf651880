package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	s, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	if !strings.HasPrefix(s.RuntimeURL, "https://builds.bepinex.dev/") {
		t.Errorf("RuntimeURL = %q", s.RuntimeURL)
	}
	if s.UserAgent != "restaurats-mod-manager" {
		t.Errorf("UserAgent = %q, want %q", s.UserAgent, "restaurats-mod-manager")
	}
	if !strings.HasSuffix(s.GameDir, `\Restaurats`) {
		t.Errorf("GameDir = %q", s.GameDir)
	}
	if d, err := s.Poll(); err != nil || d != 5*time.Second {
		t.Errorf("Poll() = %v, %v, want 5s", d, err)
	}
}

func TestPoll(t *testing.T) {
	tests := map[string]struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		"seconds":      {value: "5s", want: 5 * time.Second},
		"milliseconds": {value: "250ms", want: 250 * time.Millisecond},
		"empty":        {value: "", want: 0},
		"garbage":      {value: "soon", wantErr: true},
		"negative":     {value: "-1s", wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := (&Settings{PollInterval: tc.value}).Poll()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Poll() error = %v, wantErr = %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Poll() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWriteLocalSettings(t *testing.T) {
	dir := t.TempDir()
	if err := WriteLocalSettings(dir, &Settings{GameDir: "/games/Restaurats"}); err != nil {
		t.Fatalf("WriteLocalSettings() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LocalConfigFile))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "runtime_url") {
		t.Errorf("unset fields should be omitted:\n%s", data)
	}

	got, err := LoadFile(filepath.Join(dir, LocalConfigFile))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.GameDir != "/games/Restaurats" {
		t.Errorf("GameDir = %q, want %q", got.GameDir, "/games/Restaurats")
	}
}
