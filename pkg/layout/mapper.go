package layout

import "strings"

const (
	pluginsMarker = "bepinex/plugins/"
	pluginsPrefix = "plugins/"
	runtimePrefix = "bepinex/"

	// qualifierChars terminate the usable part of an entry that already
	// nests files under the plugin directory.
	qualifierChars = ":*"
)

// MapEntry decides where a package archive entry lands inside the game
// directory. It returns false when the entry should not be installed.
//
// Package archives come from many third-party sources, so a few common
// layouts are accepted: entries already under BepInEx/plugins/, a bare
// plugins/ folder, or anything under BepInEx/.
func MapEntry(name string) (string, bool) {
	name = Normalize(name)
	if name == "" {
		return "", false
	}
	lower := strings.ToLower(name)

	if IsDirEntry(name) {
		return name, true
	}

	if strings.Contains(lower, pluginsMarker) {
		rel := name
		if i := strings.IndexAny(name, qualifierChars); i >= 0 {
			rel = name[:i]
		}
		return rel, rel != ""
	}

	if strings.HasPrefix(lower, pluginsPrefix) {
		return PluginsDir + "/" + name[len(pluginsPrefix):], true
	}

	if strings.HasPrefix(lower, runtimePrefix) {
		return name, true
	}

	return "", false
}
