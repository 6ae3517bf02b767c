package flowsheet

import (
	"fmt"

	"tepsim/internal/composition"
	"tepsim/internal/materials"
	"tepsim/internal/units"
)

// Stream is a graph edge carrying material between two unit operations.
// It has exactly one source and one sink; a stream missing either is
// broken and reports so when inspected rather than failing.
type Stream struct {
	id     string
	source UnitOperation
	sink   UnitOperation

	temperature units.Quantity
	hasTemp     bool

	Composition *composition.Ledger
}

// NewStream creates a disconnected stream whose composition ledger
// resolves component names against the given catalog. With a nil
// catalog the stream carries no composition: ledger reads return zero
// views and writes fail with composition.ErrNoCatalog.
func NewStream(id string, catalog *materials.Catalog) *Stream {
	return &Stream{
		id:          id,
		Composition: composition.NewLedger(catalog),
	}
}

// ID returns the stream identifier.
func (s *Stream) ID() string { return s.id }

// Source returns the unit the stream starts at, or nil.
func (s *Stream) Source() UnitOperation { return s.source }

// Sink returns the unit the stream ends at, or nil.
func (s *Stream) Sink() UnitOperation { return s.sink }

// Broken reports whether either endpoint is missing.
func (s *Stream) Broken() bool { return s.source == nil || s.sink == nil }

// Disconnect clears an endpoint, leaving the stream broken.
func (s *Stream) Disconnect(source bool) {
	if source {
		s.source = nil
	} else {
		s.sink = nil
	}
}

// Temperature returns the stream temperature.
func (s *Stream) Temperature() units.Quantity { return s.temperature }

// SetTemperature stores a dimension-checked temperature.
func (s *Stream) SetTemperature(q units.Quantity) error {
	if err := units.Check(q, units.TemperatureDim); err != nil {
		return err
	}
	s.temperature = q
	s.hasTemp = true
	return nil
}

// Pressure returns the pressure difference between sink and source. It
// is a derived read; a stream has no pressure of its own.
func (s *Stream) Pressure() (units.Quantity, error) {
	if s.Broken() {
		return units.Quantity{}, &ConnectionError{Stream: s.id, Reason: "pressure of a broken stream"}
	}
	return s.sink.Pressure().Sub(s.source.Pressure())
}

// String renders the stream's endpoints, or flags a broken connection.
func (s *Stream) String() string {
	if s.Broken() {
		return fmt.Sprintf("%s: broken connection", s.id)
	}
	return fmt.Sprintf("%s: %s ----> %s", s.id, s.source.ID(), s.sink.ID())
}
