// Package manifest locates and parses plugin manifests. A plugin
// directory carries either a manifest.json or a manifest.yaml at its
// top level; JSON takes precedence when both exist. Known fields are
// validated against an embedded JSON schema; everything else is kept
// verbatim in an open key set.
package manifest
