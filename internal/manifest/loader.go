package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Loader locates and parses the manifest of a single plugin directory.
// The zero value is ready to use with YAML support enabled.
type Loader struct {
	// DisableYAML switches off manifest.yaml parsing. Directories that
	// only carry a YAML manifest then fail with ErrYAMLUnavailable.
	DisableYAML bool
}

// Load reads the manifest of the plugin rooted at dir. manifest.json
// takes precedence; manifest.yaml is the fallback. A directory with
// neither fails with *NotFoundError, an unparseable or schema-invalid
// file with *ParseError.
func (l *Loader) Load(dir string) (*Manifest, error) {
	jsonPath := filepath.Join(dir, JSONFileName)
	data, err := os.ReadFile(jsonPath)
	switch {
	case err == nil:
		return parse(jsonPath, data, decodeJSON)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", jsonPath, err)
	}

	yamlPath := filepath.Join(dir, YAMLFileName)
	data, err = os.ReadFile(yamlPath)
	switch {
	case err == nil:
		if l.DisableYAML {
			return nil, fmt.Errorf("%s: %w", yamlPath, ErrYAMLUnavailable)
		}
		return parse(yamlPath, data, decodeYAML)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading %s: %w", yamlPath, err)
	}

	return nil, &NotFoundError{Dir: dir}
}

// decodeFunc unmarshals raw manifest bytes into a generic map.
type decodeFunc func(data []byte) (map[string]any, error)

func decodeJSON(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	normalized, _ := normalizeYAML(raw).(map[string]any)
	return normalized, nil
}

// parse decodes the file, validates the known fields against the
// embedded schema, and splits recognized keys from the open remainder.
func parse(path string, data []byte, decode decodeFunc) (*Manifest, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validate(raw); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m := &Manifest{Extra: make(map[string]any)}
	for k, v := range raw {
		switch k {
		case "id":
			m.ID, _ = v.(string)
		case "name":
			m.Name, _ = v.(string)
		case "version":
			m.Version, _ = v.(string)
		default:
			m.Extra[k] = v
		}
	}

	return m, nil
}

// normalizeYAML recursively converts YAML-decoded values to
// JSON-compatible types so the schema validator sees a uniform shape.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[k] = normalizeYAML(inner)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, inner := range val {
			m[fmt.Sprint(k)] = normalizeYAML(inner)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = normalizeYAML(inner)
		}
		return s
	default:
		return v
	}
}
