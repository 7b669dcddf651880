package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ratmods/modman/pkg/archive/archivetest"
	"github.com/ratmods/modman/pkg/loader"
	"github.com/ratmods/modman/pkg/manifest"
)

// run executes the CLI with args against gameDir and returns stdout.
func run(t *testing.T, gameDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--game-dir", gameDir}, args...))
	err := root.Execute()
	return out.String(), err
}

// isolate keeps the CLI away from the real home and working directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestCLILifecycle(t *testing.T) {
	isolate(t)
	game := t.TempDir()
	in := t.TempDir()

	out, err := run(t, game, "install", filepath.Join(in, "early.zip"))
	if err == nil || !strings.Contains(out, "Install BepInEx first to manage mods.") {
		t.Fatalf("install before runtime: out = %q, err = %v", out, err)
	}

	runtimeZip := filepath.Join(in, "BepInEx.zip")
	if err := os.WriteFile(runtimeZip, archivetest.Runtime(t, true), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, game, "runtime", "install", runtimeZip)
	if err != nil {
		t.Fatalf("runtime install: %v\n%s", err, out)
	}
	if !strings.Contains(out, "BepInEx installed and validated.") {
		t.Errorf("runtime install output = %q", out)
	}

	out, err = run(t, game, "runtime", "status")
	if err != nil {
		t.Fatalf("runtime status: %v", err)
	}
	if !strings.Contains(out, "Status: Installed") || !strings.Contains(out, "Validation: ok") {
		t.Errorf("runtime status output = %q", out)
	}

	modZip := archivetest.WriteZip(t, in, "Foo.zip",
		archivetest.File{Name: "manifest.json", Body: `{"name":"Foo","version_number":"1.0.0"}`},
		archivetest.File{Name: "plugins/Foo.dll", Body: "foo"},
	)
	out, err = run(t, game, "install", modZip)
	if err != nil {
		t.Fatalf("install: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Mod installed.") {
		t.Errorf("install output = %q", out)
	}

	out, err = run(t, game, "list", "-o", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var m manifest.Manifest
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("list -o json is not JSON: %v\n%s", err, out)
	}
	if len(m.Mods) != 1 || m.Mods[0].ID != "Foo" || m.Mods[0].Version != "1.0.0" {
		t.Errorf("listed mods = %+v", m.Mods)
	}

	if out, err = run(t, game, "verify"); err != nil {
		t.Errorf("verify: %v\n%s", err, out)
	}

	out, err = run(t, game, "uninstall", "--all")
	if err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if !strings.Contains(out, "Uninstalled Foo") {
		t.Errorf("uninstall output = %q", out)
	}

	out, err = run(t, game, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No mods installed") {
		t.Errorf("list output = %q", out)
	}
}

func TestRuntimeInstallValidationFailure(t *testing.T) {
	isolate(t)
	game := t.TempDir()
	zip := filepath.Join(t.TempDir(), "BepInEx.zip")
	if err := os.WriteFile(zip, archivetest.Runtime(t, false), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, game, "runtime", "install", zip)
	if !errors.Is(err, loader.ErrCompanionMissing) {
		t.Fatalf("runtime install error = %v, want %v", err, loader.ErrCompanionMissing)
	}
	if !strings.Contains(out, "BepInEx install failed: ") {
		t.Errorf("output = %q", out)
	}
}

func TestUninstallUnknownID(t *testing.T) {
	isolate(t)
	game := t.TempDir()
	m := &manifest.Manifest{Mods: []manifest.PackageEntry{{ID: "Foo", Name: "Foo"}}}
	if err := manifest.Save(game, m); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, game, "uninstall", "Bar"); err == nil {
		t.Error("uninstall of an unknown id should fail")
	}
	if got := manifest.Load(game); len(got.Mods) != 1 {
		t.Errorf("manifest changed: %+v", got.Mods)
	}
}

func TestWriteManifest(t *testing.T) {
	m := &manifest.Manifest{Mods: []manifest.PackageEntry{
		{ID: "Foo", Name: "Foo Mod", Version: "1.0.0", InstalledFiles: []string{"BepInEx/plugins/Foo.dll"}},
		{ID: "Bar", Name: "Bar", InstalledFiles: []string{"a", "b"}},
	}}

	tests := map[string]struct {
		format  string
		want    []string
		wantErr bool
	}{
		"table": {
			format: "table",
			want:   []string{"ID", "Foo Mod", "1.0.0", "Bar"},
		},
		"yaml": {
			format: "yaml",
			want:   []string{"mods:", "id: Foo", "installed_files:", "- BepInEx/plugins/Foo.dll"},
		},
		"json": {
			format: "json",
			want:   []string{`"id": "Foo"`, `"installed_files"`},
		},
		"unknown": {
			format:  "xml",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeManifest(&buf, m, tc.format)
			if (err != nil) != tc.wantErr {
				t.Fatalf("writeManifest() error = %v, wantErr = %v", err, tc.wantErr)
			}
			for _, want := range tc.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
