package manifest

import (
	"errors"
	"fmt"
)

// ErrYAMLUnavailable indicates the plugin only carries a YAML manifest
// but YAML parsing is disabled for this deployment. This is a
// deployment-configuration problem the caller must surface, not a bad
// plugin.
var ErrYAMLUnavailable = errors.New("yaml manifest support is disabled in this deployment")

// NotFoundError indicates a directory contains neither manifest.json
// nor manifest.yaml.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s or %s found in %s", JSONFileName, YAMLFileName, e.Dir)
}

// ParseError indicates a manifest file exists but could not be parsed,
// or failed schema validation of its known fields.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
