// Package materials holds the physical-property system: immutable
// Component and Reaction records built from schema-validated
// configuration trees, and the Catalog that registers them for lookup
// by the rest of the simulation. Property correlations (Antoine vapor
// pressure, polynomial density and enthalpy, Arrhenius rates) are pure
// functions over dimension-checked quantities.
package materials

import (
	"fmt"
	"sort"
	"strings"
)

// SchemaError reports a configuration record whose key structure does
// not match the required schema.
type SchemaError struct {
	Path string
	Want []string
	Got  []string
}

func (e *SchemaError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "record"
	}
	return fmt.Sprintf("%s: keys %v do not match required schema keys %v", loc, e.Got, e.Want)
}

// ArityError reports mismatched array lengths in a reaction record or a
// rate evaluation.
type ArityError struct {
	Context string
	Want    int
	Got     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d values, got %d", e.Context, e.Want, e.Got)
}

// UnknownComponentError reports a lookup of a component name that was
// never registered.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q", e.Name)
}

// schemaNode describes the required key structure of a record subtree.
// A nil map marks a leaf whose value shape is not constrained here.
type schemaNode map[string]schemaNode

var componentSchema = schemaNode{
	"name": nil,
	"molar mass": {
		"value": nil,
		"units": nil,
	},
	"antoines": {
		"a":                 nil,
		"b":                 nil,
		"c":                 nil,
		"base":              nil,
		"pressure units":    nil,
		"temperature units": nil,
	},
	"liquid density": {
		"a":                 nil,
		"b":                 nil,
		"c":                 nil,
		"temperature units": nil,
		"density units":     nil,
	},
	"liquid specific enthalpy": {
		"a":                 nil,
		"b":                 nil,
		"c":                 nil,
		"temperature units": nil,
		"enthalpy units":    nil,
	},
	"gas specific enthalpy": {
		"a":                 nil,
		"b":                 nil,
		"c":                 nil,
		"temperature units": nil,
		"enthalpy units":    nil,
	},
	"vaporization heat": {
		"value": nil,
		"units": nil,
	},
}

var reactionSchema = schemaNode{
	"name":          nil,
	"components":    nil,
	"stoichiometry": nil,
	"rate order":    nil,
	"arrhenius": {
		"a": {
			"val":   nil,
			"units": nil,
		},
		"ea": {
			"val":   nil,
			"units": nil,
		},
	},
	"phase": nil,
	"enthalpy": {
		"val":   nil,
		"units": nil,
	},
}

// normalizeKeys returns a copy of the record tree with every mapping key
// lowercased, so schema matching is case-insensitive regardless of how
// the configuration file spelled its keys.
func normalizeKeys(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if sub, ok := v.(map[string]any); ok {
			v = normalizeKeys(sub)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// checkSchema validates that rec has exactly the keys the schema
// requires at every nesting level. Keys are compared order-independent.
func checkSchema(rec map[string]any, schema schemaNode, path string) error {
	if !sameKeys(rec, schema) {
		return &SchemaError{Path: path, Want: sortedSchemaKeys(schema), Got: sortedRecKeys(rec)}
	}
	for key, child := range schema {
		if child == nil {
			continue
		}
		sub, ok := rec[key].(map[string]any)
		if !ok {
			return &SchemaError{Path: joinPath(path, key), Want: sortedSchemaKeys(child), Got: nil}
		}
		if err := checkSchema(sub, child, joinPath(path, key)); err != nil {
			return err
		}
	}
	return nil
}

func sameKeys(rec map[string]any, schema schemaNode) bool {
	if len(rec) != len(schema) {
		return false
	}
	for k := range schema {
		if _, ok := rec[k]; !ok {
			return false
		}
	}
	return true
}

func sortedSchemaKeys(s schemaNode) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRecKeys(rec map[string]any) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// recString extracts a string-valued leaf.
func recString(rec map[string]any, key string) (string, error) {
	v, ok := rec[key].(string)
	if !ok {
		return "", fmt.Errorf("property %q: expected a string, got %T", key, rec[key])
	}
	return v, nil
}

// recFloat extracts a numeric leaf; YAML decoders hand back either
// float64 or int depending on the literal.
func recFloat(rec map[string]any, key string) (float64, error) {
	switch v := rec[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("property %q: expected a number, got %T", key, rec[key])
	}
}
