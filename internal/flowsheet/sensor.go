package flowsheet

import (
	"fmt"
	"log/slog"

	"tepsim/internal/noise"
	"tepsim/internal/units"
)

// Probe reads one measurable value off the graph. Sensors re-run their
// probe on every poll, so the reading tracks state written earlier in
// the same step.
type Probe func() (units.Quantity, error)

// Reading is one polled sensor value after offset and noise.
type Reading struct {
	SensorID string
	Value    float64
	Units    string
}

// Sensor is a read-only measurement hook. Polling never mutates graph
// state; it adds an optional calibration offset and Gaussian noise to
// whatever the probe returns.
type Sensor struct {
	id    string
	log   *slog.Logger
	probe Probe

	offset    units.Quantity
	hasOffset bool
	stdv      units.Quantity
	hasStdv   bool

	hooked bool
}

// NewSensor creates an unhooked sensor around a probe.
func NewSensor(id string, probe Probe, log *slog.Logger) *Sensor {
	if log == nil {
		log = slog.Default()
	}
	return &Sensor{id: id, log: log, probe: probe}
}

// ID returns the sensor identifier.
func (s *Sensor) ID() string { return s.id }

// Hooked reports whether the sensor has been validated against the
// graph.
func (s *Sensor) Hooked() bool { return s.hooked }

// SetOffset stores a calibration offset added to every reading before
// noise. Its dimension must match the probe's value at poll time.
func (s *Sensor) SetOffset(q units.Quantity) {
	s.offset = q
	s.hasOffset = true
}

// SetStdv stores the standard deviation of the measurement noise.
func (s *Sensor) SetStdv(q units.Quantity) {
	s.stdv = q
	s.hasStdv = true
}

// Hook validates that the probe resolves without error. A sensor that
// fails to hook is rejected up front instead of failing on every poll.
func (s *Sensor) Hook() error {
	if s.probe == nil {
		return fmt.Errorf("sensor %q: no probe", s.id)
	}
	if _, err := s.probe(); err != nil {
		return fmt.Errorf("sensor %q: hook failed: %w", s.id, err)
	}
	s.hooked = true
	return nil
}

// Poll reads the probe and returns the value with offset and noise
// applied. A dimensionless reading is recorded with a warning since a
// unitless measurement is usually a wiring mistake.
func (s *Sensor) Poll(gen *noise.Generator) (Reading, error) {
	if !s.hooked {
		return Reading{}, fmt.Errorf("sensor %q: polled before hooking", s.id)
	}
	value, err := s.probe()
	if err != nil {
		return Reading{}, fmt.Errorf("sensor %q: %w", s.id, err)
	}

	if s.hasOffset {
		value, err = value.Add(s.offset)
		if err != nil {
			return Reading{}, fmt.Errorf("sensor %q offset: %w", s.id, err)
		}
	}
	if s.hasStdv {
		if gen == nil {
			return Reading{}, fmt.Errorf("sensor %q: no noise generator for a noisy sensor", s.id)
		}
		if err := units.Check(s.stdv, value.Dimension()); err != nil {
			return Reading{}, fmt.Errorf("sensor %q noise: %w", s.id, err)
		}
		// The deviation is a delta, so only scales matter here.
		stdv := (s.stdv.SI() - s.stdv.Unit().Offset) / value.Unit().Scale
		value = value.AddMagnitude(gen.Gaussian(stdv))
	}

	if value.Dimension().IsZero() {
		s.log.Warn("sensor reading has no units", "sensor", s.id)
	}
	return Reading{SensorID: s.id, Value: value.Magnitude(), Units: value.Unit().Name}, nil
}
