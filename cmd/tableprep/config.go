package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Config drives one batch run: load input, apply steps in declared
// order, export the result.
type Config struct {
	Input struct {
		Path      string `json:"path" toml:"path" yaml:"path"`
		Type      string `json:"type" toml:"type" yaml:"type"` // csv|jsonl (default csv)
		HasHeader bool   `json:"has_header" toml:"has_header" yaml:"has_header"`
		Delimiter string `json:"delimiter" toml:"delimiter" yaml:"delimiter"`
	} `json:"input" toml:"input" yaml:"input"`

	// Steps are applied in order; each entry holds exactly one key, the
	// operation kind, mapped to its parameters.
	Steps []map[string]map[string]any `json:"steps" toml:"steps" yaml:"steps"`

	Export *struct {
		Dir         string         `json:"dir" toml:"dir" yaml:"dir"`
		Stem        string         `json:"stem" toml:"stem" yaml:"stem"`
		Format      string         `json:"format" toml:"format" yaml:"format"`
		Timestamped bool           `json:"timestamped" toml:"timestamped" yaml:"timestamped"`
		Metadata    map[string]any `json:"metadata" toml:"metadata" yaml:"metadata"`
	} `json:"export" toml:"export" yaml:"export"`

	PreviewRows int  `json:"preview_rows" toml:"preview_rows" yaml:"preview_rows"`
	Profile     bool `json:"profile" toml:"profile" yaml:"profile"`
}

// LoadConfig reads a config file, picking the decoder by extension:
// .json, .toml, .yaml/.yml.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension %q (want .json, .toml or .yaml)", filepath.Ext(path))
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// The decoders hand step parameters over as loosely typed values; these
// helpers narrow them.

func argString(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func argBool(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

func argStringSlice(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list, got %T", key, raw)
	}
	out := make([]string, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: expected a string, got %T", key, i, v)
		}
		out[i] = s
	}
	return out, nil
}

func argStringMap(args map[string]any, key string) (map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	out := map[string]string{}
	switch m := raw.(type) {
	case map[string]any:
		for k, v := range m {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s: expected a string, got %T", key, k, v)
			}
			out[k] = s
		}
	case map[any]any: // yaml.v3 can produce this for nested maps
		for k, v := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%s: non-string key %v", key, k)
			}
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s.%s: expected a string, got %T", key, ks, v)
			}
			out[ks] = s
		}
	default:
		return nil, fmt.Errorf("%s: expected a mapping, got %T", key, raw)
	}
	return out, nil
}
