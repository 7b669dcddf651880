package layout

import (
	"path"
	"path/filepath"
	"strings"
)

// Destination-relative locations inside a game installation. All values use
// forward slashes; convert with filepath.FromSlash before touching disk.
const (
	RuntimeDir = "BepInEx"
	PluginsDir = RuntimeDir + "/plugins"
	CoreDir    = RuntimeDir + "/core"
	ConfigDir  = RuntimeDir + "/config"

	// CoreLibrary is the file whose presence means the runtime is installed.
	CoreLibrary = CoreDir + "/BepInEx.dll"
	// CoreLibraryAlt is accepted in place of CoreLibrary during validation.
	CoreLibraryAlt = CoreDir + "/BepInEx.Core.dll"
	// CompanionFile is the native loader that must sit next to the game executable.
	CompanionFile = "winhttp.dll"

	ConfigFile = ConfigDir + "/BepInEx.cfg"
	IndexFile  = RuntimeDir + "/mod-manager.index.json"

	NativeLibraryExt = ".dll"
	ArchiveExt       = ".zip"
)

// Abs joins a slash-separated relative path onto root.
func Abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// IsDirEntry reports whether an archive entry name denotes a directory.
func IsDirEntry(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`)
}

// Normalize converts backslashes to forward slashes so archives built on
// Windows map the same way as everything else.
func Normalize(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// PluginPath returns the plugin-directory path for a file, dropping any
// directories the file had inside its archive.
func PluginPath(name string) string {
	return PluginsDir + "/" + path.Base(Normalize(name))
}

// HasExt reports whether name ends with ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), ext)
}
