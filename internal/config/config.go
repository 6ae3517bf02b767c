// Package config loads simulation settings from YAML files: the
// run parameters, the component and reaction property records, and the
// flowsheet topology. Keys are case-normalized on import so settings
// files may spell headers however they like.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportYAML reads one YAML file into a key tree with every mapping
// key lowercased at every nesting level.
func ImportYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lowercaseKeys(doc), nil
}

// ImportYAMLFolder reads every .yaml file in a directory, keyed by the
// file name without its extension. Files are visited in sorted order.
func ImportYAMLFolder(dir string) (map[string]map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make(map[string]map[string]any, len(names))
	for _, name := range names {
		doc, err := ImportYAML(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(name, ".yaml")] = doc
	}
	return out, nil
}

// lowercaseKeys rewrites every mapping key in the tree to lowercase,
// descending through nested mappings and sequences.
func lowercaseKeys(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[strings.ToLower(k)] = lowercaseValue(v)
	}
	return out
}

func lowercaseValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return lowercaseKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = lowercaseValue(e)
		}
		return out
	default:
		return v
	}
}
