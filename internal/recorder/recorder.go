// Package recorder provides sensor-reading persistence for simulation
// runs: an in-memory recorder for tests and short runs, and a SQLite
// recorder for runs whose output outlives the process.
package recorder

import (
	"context"

	"tepsim/internal/flowsheet"
)

// Recorder receives the readings produced by each simulation step.
type Recorder interface {
	// Record stores the readings polled at the end of one step.
	Record(ctx context.Context, step int, readings []flowsheet.Reading) error
	// Close releases any underlying resources.
	Close() error
}

// Memory is an in-process recorder. It is not safe for concurrent use;
// the simulation loop is single-threaded.
type Memory struct {
	steps    []int
	readings [][]flowsheet.Reading
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends one step's readings.
func (m *Memory) Record(ctx context.Context, step int, readings []flowsheet.Reading) error {
	kept := make([]flowsheet.Reading, len(readings))
	copy(kept, readings)
	m.steps = append(m.steps, step)
	m.readings = append(m.readings, kept)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Len returns the number of recorded steps.
func (m *Memory) Len() int { return len(m.steps) }

// Step returns the readings recorded for the i-th recorded step.
func (m *Memory) Step(i int) (int, []flowsheet.Reading) {
	return m.steps[i], m.readings[i]
}
