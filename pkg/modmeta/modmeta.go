// Package modmeta reads the optional metadata file shipped inside a mod
// archive (Thunderstore style manifest.json, or a YAML equivalent).
package modmeta

import (
	"strings"

	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"
)

// MaxSize bounds how much of a metadata entry is read.
const MaxSize = 1 << 20

var fileSuffixes = []string{"manifest.json", "manifest.yaml", "manifest.yml"}

// Meta is the subset of mod metadata modman cares about. Empty fields mean
// the value was absent or unusable.
type Meta struct {
	Name    string
	Version string
}

// IsMetadataFile reports whether an archive entry name looks like a mod
// metadata file.
func IsMetadataFile(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range fileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Parse extracts name and version from a metadata document. It never fails:
// malformed documents simply yield whatever fields could be recovered.
func Parse(name string, data []byte) Meta {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return Meta{}
		}
		data = converted
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Meta{}
	}

	return Meta{
		Name:    stringField(doc, "name"),
		Version: firstString(doc, "version_number", "version"),
	}
}

// Merge overlays the non-empty fields of later onto m. Later metadata files
// in an archive win over earlier ones, matching the way entries overwrite.
func (m Meta) Merge(later Meta) Meta {
	if later.Name != "" {
		m.Name = later.Name
	}
	if later.Version != "" {
		m.Version = later.Version
	}
	return m
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := stringField(doc, key); v != "" {
			return v
		}
	}
	return ""
}

func stringField(doc gjson.Result, key string) string {
	v := doc.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.String())
}
