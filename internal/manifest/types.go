package manifest

import (
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Manifest file names probed by Load, in precedence order.
const (
	JSONFileName = "manifest.json"
	YAMLFileName = "manifest.yaml"
)

// UnknownVersion is the sentinel used when a manifest declares no version.
const UnknownVersion = "0.0.0"

// Manifest is a plugin's declarative descriptor. All recognized fields
// are optional; Extra holds every key the loader does not interpret.
type Manifest struct {
	ID      string
	Name    string
	Version string
	Extra   map[string]any
}

// Identity returns the plugin id, falling back to the base name of the
// source directory when the manifest declares none. The result is
// never empty for a non-empty dir.
func (m *Manifest) Identity(dir string) string {
	if m.ID != "" {
		return m.ID
	}
	return filepath.Base(filepath.Clean(dir))
}

// DisplayName returns the display name, defaulting to the identity.
func (m *Manifest) DisplayName(dir string) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Identity(dir)
}

// EffectiveVersion returns the declared version with a leading "v"
// stripped when the remainder parses as semver. Anything else is kept
// verbatim; a missing version becomes the unknown-version sentinel.
func (m *Manifest) EffectiveVersion() string {
	if m.Version == "" {
		return UnknownVersion
	}
	trimmed := strings.TrimPrefix(m.Version, "v")
	if _, err := semver.NewVersion(trimmed); err != nil {
		return m.Version
	}
	return trimmed
}
