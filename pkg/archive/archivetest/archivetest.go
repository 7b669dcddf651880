// Package archivetest builds zip fixtures for tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// File is a zip entry fixture. Names ending in "/" become directory entries.
type File struct {
	Name string
	Body string
}

// Zip returns the bytes of a zip archive holding files in the given order.
func Zip(t testing.TB, files ...File) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", f.Name, err)
		}
		if f.Body == "" {
			continue
		}
		if _, err := w.Write([]byte(f.Body)); err != nil {
			t.Fatalf("writing zip entry %q: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip archive named name into dir and returns its path.
func WriteZip(t testing.TB, dir, name string, files ...File) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Zip(t, files...), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// Runtime returns a runtime archive laid out like a BepInEx release.
// When withCompanion is false the native loader is left out.
func Runtime(t testing.TB, withCompanion bool) []byte {
	t.Helper()

	files := []File{
		{Name: ".doorstop_version", Body: "1.0.0"},
		{Name: "doorstop_config.ini", Body: "[General]\nenabled=true\n"},
		{Name: "changelog.txt", Body: "v6.0.0-pre.2 Changelog\n"},
	}
	if withCompanion {
		files = append(files, File{Name: "winhttp.dll", Body: "fake winhttp content"})
	}
	files = append(files,
		File{Name: "BepInEx/"},
		File{Name: "BepInEx/core/"},
		File{Name: "BepInEx/core/BepInEx.dll", Body: "fake dll content"},
		File{Name: "BepInEx/core/BepInEx.Core.xml", Body: "<xml></xml>"},
		File{Name: "BepInEx/patchers/"},
		File{Name: "BepInEx/plugins/"},
		File{Name: "BepInEx/config/"},
		File{Name: "dotnet/"},
		File{Name: "dotnet/.version", Body: "6.0.0"},
	)
	return Zip(t, files...)
}
