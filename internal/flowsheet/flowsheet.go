package flowsheet

import (
	"fmt"
	"log/slog"

	"tepsim/internal/noise"
	"tepsim/internal/units"
)

// Flowsheet owns the plant graph: unit operations keyed by id, streams
// keyed by id, sensors in registration order, and the declared
// evaluation order. It is mutated during setup and only read while
// stepping.
type Flowsheet struct {
	log   *slog.Logger
	noise *noise.Generator

	unitOps   map[string]UnitOperation
	unitOrder []string

	streams     map[string]*Stream
	streamOrder []string

	sensors     map[string]*Sensor
	sensorOrder []string

	evalOrder []string
}

// New creates an empty flowsheet. Sensor noise is drawn from gen; a
// nil logger falls back to the default slog logger.
func New(log *slog.Logger, gen *noise.Generator) *Flowsheet {
	if log == nil {
		log = slog.Default()
	}
	return &Flowsheet{
		log:     log,
		noise:   gen,
		unitOps: make(map[string]UnitOperation),
		streams: make(map[string]*Stream),
		sensors: make(map[string]*Sensor),
	}
}

// AddUnitOperation registers a unit, warning and overwriting on a
// duplicate id.
func (f *Flowsheet) AddUnitOperation(u UnitOperation) {
	if _, exists := f.unitOps[u.ID()]; exists {
		f.log.Warn("overwriting existing unit operation", "id", u.ID())
	} else {
		f.unitOrder = append(f.unitOrder, u.ID())
	}
	f.unitOps[u.ID()] = u
}

// AddStream wires a stream between two registered units and registers
// it, warning and overwriting on a duplicate id. Wiring failures are
// hard errors; no partially wired stream is kept.
func (f *Flowsheet) AddStream(s *Stream, sourceID, sinkID, sourcePort, sinkPort string) error {
	source, ok := f.unitOps[sourceID]
	if !ok {
		return &ConnectionError{Stream: s.ID(), Unit: sourceID, Reason: "unknown source unit"}
	}
	sink, ok := f.unitOps[sinkID]
	if !ok {
		return &ConnectionError{Stream: s.ID(), Unit: sinkID, Reason: "unknown sink unit"}
	}
	if err := Connect(s, source, sink, sourcePort, sinkPort); err != nil {
		return err
	}

	if _, exists := f.streams[s.ID()]; exists {
		f.log.Warn("overwriting existing stream", "id", s.ID())
	} else {
		f.streamOrder = append(f.streamOrder, s.ID())
	}
	f.streams[s.ID()] = s
	return nil
}

// AddSensor hooks a sensor and registers it, warning and overwriting
// on a duplicate id. A sensor whose probe fails to resolve stays
// registered but unhooked, and is skipped while polling.
func (f *Flowsheet) AddSensor(s *Sensor) {
	if err := s.Hook(); err != nil {
		f.log.Warn("sensor failed to hook", "id", s.ID(), "error", err)
	}
	if _, exists := f.sensors[s.ID()]; exists {
		f.log.Warn("overwriting existing sensor", "id", s.ID())
	} else {
		f.sensorOrder = append(f.sensorOrder, s.ID())
	}
	f.sensors[s.ID()] = s
}

// Unit returns a registered unit operation by id.
func (f *Flowsheet) Unit(id string) (UnitOperation, bool) {
	u, ok := f.unitOps[id]
	return u, ok
}

// Stream returns a registered stream by id.
func (f *Flowsheet) Stream(id string) (*Stream, bool) {
	s, ok := f.streams[id]
	return s, ok
}

// UnitIDs returns registered unit ids in registration order.
func (f *Flowsheet) UnitIDs() []string {
	out := make([]string, len(f.unitOrder))
	copy(out, f.unitOrder)
	return out
}

// SensorIDs returns registered sensor ids in registration order, which
// is also polling order.
func (f *Flowsheet) SensorIDs() []string {
	out := make([]string, len(f.sensorOrder))
	copy(out, f.sensorOrder)
	return out
}

// SetEvaluationOrder declares the order units advance each step. The
// order must be an exact permutation of the registered unit ids: no
// unknown id, no missing unit.
func (f *Flowsheet) SetEvaluationOrder(order []string) error {
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if _, ok := f.unitOps[id]; !ok {
			return &OrderError{ID: id, Reason: "unknown unit"}
		}
		if seen[id] {
			return &OrderError{ID: id, Reason: "duplicate unit"}
		}
		seen[id] = true
	}
	for id := range f.unitOps {
		if !seen[id] {
			return &OrderError{ID: id, Reason: "unit missing from order"}
		}
	}
	f.evalOrder = append([]string(nil), order...)
	return nil
}

// EvaluationOrder returns the declared order, or registration order if
// none was declared.
func (f *Flowsheet) EvaluationOrder() []string {
	if f.evalOrder == nil {
		return f.UnitIDs()
	}
	out := make([]string, len(f.evalOrder))
	copy(out, f.evalOrder)
	return out
}

// Step advances every unit through its three-phase cycle in evaluation
// order, strictly sequentially, then polls all sensors and returns
// their readings. A failed unit halts the step; the error surfaces
// verbatim.
func (f *Flowsheet) Step(dt units.Quantity) ([]Reading, error) {
	for _, id := range f.EvaluationOrder() {
		if err := Step(f.unitOps[id], dt); err != nil {
			return nil, err
		}
	}
	return f.PollSensors()
}

// PollSensors polls every hooked sensor in registration order.
// Unhooked sensors are skipped.
func (f *Flowsheet) PollSensors() ([]Reading, error) {
	readings := make([]Reading, 0, len(f.sensorOrder))
	for _, id := range f.sensorOrder {
		s := f.sensors[id]
		if !s.Hooked() {
			continue
		}
		r, err := s.Poll(f.noise)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, nil
}

// String summarizes the graph for diagnostics.
func (f *Flowsheet) String() string {
	return fmt.Sprintf("flowsheet: %d units, %d streams, %d sensors",
		len(f.unitOps), len(f.streams), len(f.sensors))
}
