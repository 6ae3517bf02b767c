package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"tepsim/internal/flowsheet"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

const componentYAML = `
Name: water
Molar Mass:
  Value: 18.015
  Units: g / mol
Antoines:
  A: 1.0
  B: 2.0
  C: 3.0
  Base: 2.71828
  Pressure Units: Pa
  Temperature Units: celsius
Liquid Density:
  A: 1000.0
  B: 0.0
  C: 0.0
  Temperature Units: celsius
  Density Units: kg / m ** 3
Liquid Specific Enthalpy:
  A: 4.18
  B: 0.0
  C: 0.0
  Temperature Units: celsius
  Enthalpy Units: kJ / kg
Gas Specific Enthalpy:
  A: 1.9
  B: 0.0
  C: 0.0
  Temperature Units: celsius
  Enthalpy Units: kJ / kg
Vaporization Heat:
  Value: 2257.0
  Units: kJ / kg
`

const reactionYAML = `
Name: hydration
Components: [water]
Stoichiometry: [1]
Rate Order: [1]
Arrhenius:
  A:
    Val: 1.0
    Units: m ** 3 / mol / s
  Ea:
    Val: 1000.0
    Units: J / mol
Phase: liquid
Enthalpy:
  Val: -10.0
  Units: kJ / mol
`

const flowsheetYAML = `
Unit Operations:
  Inlets:
    feed: {}
  Outlets:
    drain: {}
Streams:
  s1:
    Source: feed
    Sink: drain
Calculation Order: [feed, drain]
`

const simulationYAML = `
Seed: 12345
Duration:
  Val: 10
  Units: s
Time Step:
  Val: 2
  Units: s
Logging:
  Level: debug
`

func writeSettings(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "simulation.yaml"), simulationYAML)
	writeFile(t, filepath.Join(dir, "components", "water.yaml"), componentYAML)
	writeFile(t, filepath.Join(dir, "reactions", "hydration.yaml"), reactionYAML)
	writeFile(t, filepath.Join(dir, "flowsheet.yaml"), flowsheetYAML)
	return dir
}

func TestImportYAML_LowercasesKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	writeFile(t, path, "Outer Key:\n  Inner Key: 5\nList:\n  - Nested Map: yes\n")

	doc, err := ImportYAML(path)
	if err != nil {
		t.Fatalf("ImportYAML error = %v", err)
	}
	outer, ok := doc["outer key"].(map[string]any)
	if !ok {
		t.Fatalf("outer key missing or wrong type: %#v", doc)
	}
	if _, ok := outer["inner key"]; !ok {
		t.Errorf("nested key not lowercased: %#v", outer)
	}
	list, ok := doc["list"].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("list missing: %#v", doc)
	}
	if m, ok := list[0].(map[string]any); !ok {
		t.Fatalf("list element not a mapping: %#v", list[0])
	} else if _, ok := m["nested map"]; !ok {
		t.Errorf("mapping inside sequence not lowercased: %#v", m)
	}
}

func TestImportYAMLFolder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "Name: second\n")
	writeFile(t, filepath.Join(dir, "a.yaml"), "Name: first\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not yaml\n")

	docs, err := ImportYAMLFolder(dir)
	if err != nil {
		t.Fatalf("ImportYAMLFolder error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2: %#v", len(docs), docs)
	}
	if docs["a"]["name"] != "first" || docs["b"]["name"] != "second" {
		t.Errorf("docs keyed wrong: %#v", docs)
	}
}

func TestLoadSimulationSettings(t *testing.T) {
	dir := writeSettings(t)

	s, err := LoadSimulationSettings(dir)
	if err != nil {
		t.Fatalf("LoadSimulationSettings error = %v", err)
	}
	if s.Seed != 12345 {
		t.Errorf("Seed = %d, want 12345", s.Seed)
	}
	if s.Duration.Val != 10 || s.Duration.Units != "s" {
		t.Errorf("Duration = %+v, want 10 s", s.Duration)
	}
	if s.TimeStep.Val != 2 {
		t.Errorf("TimeStep.Val = %v, want 2", s.TimeStep.Val)
	}
	if s.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", s.Logging.Level)
	}
}

func TestLoadSettings_AssemblesPlant(t *testing.T) {
	dir := writeSettings(t)

	plant, err := LoadSettings(dir, quietLogger())
	if err != nil {
		t.Fatalf("LoadSettings error = %v", err)
	}
	defer plant.Close()

	if _, err := plant.Catalog.Component("water"); err != nil {
		t.Errorf("component not registered: %v", err)
	}
	if _, err := plant.Catalog.Reaction("hydration"); err != nil {
		t.Errorf("reaction not registered: %v", err)
	}

	s, ok := plant.Sheet.Stream("s1")
	if !ok {
		t.Fatal("stream s1 not registered")
	}
	if s.Broken() {
		t.Error("configured stream reports broken")
	}
	order := plant.Sheet.EvaluationOrder()
	if len(order) != 2 || order[0] != "feed" || order[1] != "drain" {
		t.Errorf("evaluation order = %v, want [feed drain]", order)
	}
	if plant.Noise.Seed() != 12345 {
		t.Errorf("noise seed = %d, want 12345", plant.Noise.Seed())
	}

	steps, err := plant.Runner.TotalSteps()
	if err != nil {
		t.Fatalf("TotalSteps error = %v", err)
	}
	if steps != 5 {
		t.Errorf("TotalSteps = %d, want 5", steps)
	}
	if err := plant.Runner.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v", err)
	}
}

func TestLoadSettings_UnbuiltUnitFails(t *testing.T) {
	dir := writeSettings(t)
	writeFile(t, filepath.Join(dir, "flowsheet.yaml"), `
Unit Operations:
  Reactors:
    r1: {}
Calculation Order: [r1]
`)

	_, err := LoadSettings(dir, quietLogger())
	if !errors.Is(err, flowsheet.ErrNotImplemented) {
		t.Fatalf("LoadSettings error = %v, want ErrNotImplemented", err)
	}
}

func TestLoadSettings_BadOrderFails(t *testing.T) {
	dir := writeSettings(t)
	writeFile(t, filepath.Join(dir, "flowsheet.yaml"), `
Unit Operations:
  Inlets:
    feed: {}
  Outlets:
    drain: {}
Calculation Order: [feed]
`)

	_, err := LoadSettings(dir, quietLogger())
	var orderErr *flowsheet.OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("LoadSettings error = %v, want *OrderError", err)
	}
}

func TestLoadSettings_UnknownUnitGroup(t *testing.T) {
	dir := writeSettings(t)
	writeFile(t, filepath.Join(dir, "flowsheet.yaml"), `
Unit Operations:
  Turbines:
    t1: {}
`)

	if _, err := LoadSettings(dir, quietLogger()); err == nil {
		t.Fatal("LoadSettings accepted an unknown unit group")
	}
}
