package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"tepsim/internal/flowsheet"
	"tepsim/internal/materials"
	"tepsim/internal/noise"
	"tepsim/internal/recorder"
	"tepsim/internal/simulation"
	"tepsim/internal/units"
)

// Span is a YAML value-with-units pair.
type Span struct {
	Val   float64 `yaml:"val"`
	Units string  `yaml:"units"`
}

// Quantity converts the pair into a checked quantity.
func (s Span) Quantity() (units.Quantity, error) {
	return units.New(s.Val, s.Units)
}

// SimulationSettings holds the run parameters from simulation.yaml.
type SimulationSettings struct {
	// Seed fixes the measurement-noise sequence. Zero picks an
	// arbitrary seed, giving a non-reproducible run.
	Seed     int64 `yaml:"seed"`
	Duration Span  `yaml:"duration"`
	TimeStep Span  `yaml:"time step"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Output struct {
		// Database is the SQLite path readings are written to.
		// Empty keeps readings in memory only.
		Database string `yaml:"database"`
	} `yaml:"output"`
}

// Plant is a fully assembled simulation: property catalog, wired
// flowsheet, noise source, recorder and runner.
type Plant struct {
	Settings SimulationSettings
	Catalog  *materials.Catalog
	Sheet    *flowsheet.Flowsheet
	Noise    *noise.Generator
	Recorder recorder.Recorder
	Runner   *simulation.Runner
}

// Close releases the plant's recorder.
func (p *Plant) Close() error {
	if p.Recorder == nil {
		return nil
	}
	return p.Recorder.Close()
}

// LoadSimulationSettings reads and validates simulation.yaml from a
// settings directory.
func LoadSimulationSettings(dir string) (SimulationSettings, error) {
	var s SimulationSettings
	doc, err := ImportYAML(filepath.Join(dir, "simulation.yaml"))
	if err != nil {
		return s, err
	}
	// Round-trip through the lowercased tree so header spelling in the
	// file does not matter.
	data, err := yaml.Marshal(doc)
	if err != nil {
		return s, fmt.Errorf("failed to normalize simulation settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse simulation settings: %w", err)
	}
	return s, nil
}

// LoadSettings assembles a runnable Plant from a settings directory:
//
//	simulation.yaml   run parameters
//	components/*.yaml component property records
//	reactions/*.yaml  reaction records
//	flowsheet.yaml    streams, unit operations, calculation order
//
// Construction failures are fatal; no partially assembled plant is
// returned.
func LoadSettings(dir string, log *slog.Logger) (*Plant, error) {
	settings, err := LoadSimulationSettings(dir)
	if err != nil {
		return nil, err
	}
	return Assemble(dir, settings, log)
}

// Assemble builds a Plant from already-loaded settings, so callers can
// override fields (seed, database, log level) before construction.
func Assemble(dir string, settings SimulationSettings, log *slog.Logger) (*Plant, error) {
	if log == nil {
		log = slog.Default()
	}

	var gen *noise.Generator
	var err error
	if settings.Seed > 0 {
		gen, err = noise.New(settings.Seed)
		if err != nil {
			return nil, err
		}
	} else {
		gen = noise.NewRandom()
		log.Warn("no seed configured, run is not reproducible", "seed", gen.Seed())
	}

	catalog, err := loadCatalog(dir, log)
	if err != nil {
		return nil, err
	}
	sheet, err := loadFlowsheet(filepath.Join(dir, "flowsheet.yaml"), catalog, gen, log)
	if err != nil {
		return nil, err
	}

	var rec recorder.Recorder
	if settings.Output.Database != "" {
		rec, err = recorder.NewSQLite(settings.Output.Database)
		if err != nil {
			return nil, err
		}
	} else {
		rec = recorder.NewMemory()
	}

	runner := simulation.NewRunner(sheet, rec, log)
	duration, err := settings.Duration.Quantity()
	if err != nil {
		rec.Close()
		return nil, fmt.Errorf("duration: %w", err)
	}
	if err := runner.SetDuration(duration); err != nil {
		rec.Close()
		return nil, fmt.Errorf("duration: %w", err)
	}
	dt, err := settings.TimeStep.Quantity()
	if err != nil {
		rec.Close()
		return nil, fmt.Errorf("time step: %w", err)
	}
	if err := runner.SetTimeStep(dt); err != nil {
		rec.Close()
		return nil, fmt.Errorf("time step: %w", err)
	}

	return &Plant{
		Settings: settings,
		Catalog:  catalog,
		Sheet:    sheet,
		Noise:    gen,
		Recorder: rec,
		Runner:   runner,
	}, nil
}

// loadCatalog builds the property catalog from the components/ and
// reactions/ folders. A missing reactions folder is allowed; a plant
// without components is useless, so that folder is required.
func loadCatalog(dir string, log *slog.Logger) (*materials.Catalog, error) {
	catalog := materials.NewCatalog(log)

	comps, err := ImportYAMLFolder(filepath.Join(dir, "components"))
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(comps) {
		if _, err := catalog.AddComponent(comps[name]); err != nil {
			return nil, fmt.Errorf("component file %s: %w", name, err)
		}
	}

	rxnDir := filepath.Join(dir, "reactions")
	if _, err := os.Stat(rxnDir); os.IsNotExist(err) {
		return catalog, nil
	}
	rxns, err := ImportYAMLFolder(rxnDir)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(rxns) {
		if _, err := catalog.AddReaction(rxns[name]); err != nil {
			return nil, fmt.Errorf("reaction file %s: %w", name, err)
		}
	}
	return catalog, nil
}

// loadFlowsheet wires units, streams and the calculation order from
// flowsheet.yaml.
func loadFlowsheet(path string, catalog *materials.Catalog, gen *noise.Generator, log *slog.Logger) (*flowsheet.Flowsheet, error) {
	doc, err := ImportYAML(path)
	if err != nil {
		return nil, err
	}
	sheet := flowsheet.New(log, gen)

	unitsByType, ok := doc["unit operations"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: missing 'unit operations' section", path)
	}
	if err := addUnits(sheet, unitsByType, log); err != nil {
		return nil, err
	}

	if rawStreams, ok := doc["streams"].(map[string]any); ok {
		if err := addStreams(sheet, rawStreams, catalog); err != nil {
			return nil, err
		}
	}

	if rawOrder, ok := doc["calculation order"].([]any); ok {
		order := make([]string, 0, len(rawOrder))
		for _, v := range rawOrder {
			id, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s: calculation order entries must be strings, got %T", path, v)
			}
			order = append(order, id)
		}
		if err := sheet.SetEvaluationOrder(order); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

func addUnits(sheet *flowsheet.Flowsheet, unitsByType map[string]any, log *slog.Logger) error {
	for _, unitType := range sortedKeys(unitsByType) {
		group, ok := unitsByType[unitType].(map[string]any)
		if !ok {
			return fmt.Errorf("unit group %q must be a mapping of names to properties", unitType)
		}
		for _, name := range sortedKeys(group) {
			props, _ := group[name].(map[string]any)
			u, err := buildUnit(unitType, name, props, log)
			if err != nil {
				return err
			}
			sheet.AddUnitOperation(u)
		}
	}
	return nil
}

// buildUnit constructs one unit operation from its settings group
// header. Variants whose dynamics are unwritten fail here rather than
// mid-run.
func buildUnit(unitType, name string, props map[string]any, log *slog.Logger) (flowsheet.UnitOperation, error) {
	switch unitType {
	case "inlets":
		return flowsheet.NewInlet(name, log), nil
	case "outlets":
		return flowsheet.NewOutlet(name, log), nil
	case "splits":
		return flowsheet.NewSplit(name, log), nil
	case "joins":
		return flowsheet.NewJoin(name, log), nil
	case "vessels":
		return flowsheet.NewVessel(name, log), nil
	case "heat exchangers":
		volume, err := spanProp(props, "thermal volume")
		if err != nil {
			return nil, fmt.Errorf("heat exchanger %q: %w", name, err)
		}
		return flowsheet.NewHeatExchanger(name, log, volume)
	case "reactors":
		return flowsheet.NewReactor(name, log)
	case "strippers":
		return flowsheet.NewStripper(name, log)
	case "separators":
		return flowsheet.NewSeparator(name, log)
	case "compressors":
		return flowsheet.NewCompressor(name, log)
	default:
		return nil, fmt.Errorf("unrecognized unit operation group %q", unitType)
	}
}

func addStreams(sheet *flowsheet.Flowsheet, rawStreams map[string]any, catalog *materials.Catalog) error {
	for _, id := range sortedKeys(rawStreams) {
		props, ok := rawStreams[id].(map[string]any)
		if !ok {
			return fmt.Errorf("stream %q must be a mapping", id)
		}
		source, _ := props["source"].(string)
		sink, _ := props["sink"].(string)
		sourcePort := stringOr(props, "source port", "outlet")
		sinkPort := stringOr(props, "sink port", "inlet")

		s := flowsheet.NewStream(id, catalog)
		if err := sheet.AddStream(s, source, sink, sourcePort, sinkPort); err != nil {
			return err
		}
	}
	return nil
}

func spanProp(props map[string]any, key string) (units.Quantity, error) {
	raw, ok := props[key].(map[string]any)
	if !ok {
		return units.Quantity{}, fmt.Errorf("missing %q setting", key)
	}
	val, ok := toFloat(raw["val"])
	if !ok {
		return units.Quantity{}, fmt.Errorf("%q: val must be a number", key)
	}
	unitExpr, ok := raw["units"].(string)
	if !ok {
		return units.Quantity{}, fmt.Errorf("%q: units must be a string", key)
	}
	return units.New(val, unitExpr)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringOr(props map[string]any, key, fallback string) string {
	if s, ok := props[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
