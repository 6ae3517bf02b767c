package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"tepsim/internal/flowsheet"
)

func sampleReadings() []flowsheet.Reading {
	return []flowsheet.Reading{
		{SensorID: "T1", Value: 300.5, Units: "K"},
		{SensorID: "P1", Value: 101.3, Units: "kPa"},
	}
}

func TestMemory_RecordAndReplay(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for step := 0; step < 3; step++ {
		if err := m.Record(ctx, step, sampleReadings()); err != nil {
			t.Fatalf("Record(%d) error = %v", step, err)
		}
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	step, readings := m.Step(1)
	if step != 1 {
		t.Errorf("Step(1) step = %d, want 1", step)
	}
	if len(readings) != 2 || readings[0].SensorID != "T1" {
		t.Errorf("Step(1) readings = %+v, want the polled pair", readings)
	}
}

func TestMemory_CopiesReadings(t *testing.T) {
	m := NewMemory()
	in := sampleReadings()
	if err := m.Record(context.Background(), 0, in); err != nil {
		t.Fatalf("Record error = %v", err)
	}

	in[0].Value = -1
	_, kept := m.Step(0)
	if kept[0].Value == -1 {
		t.Error("recorder shares the caller's slice")
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	rec, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite error = %v", err)
	}
	defer rec.Close()
	ctx := context.Background()

	for step := 0; step < 5; step++ {
		if err := rec.Record(ctx, step, sampleReadings()); err != nil {
			t.Fatalf("Record(%d) error = %v", step, err)
		}
	}

	count, err := rec.StepCount(ctx)
	if err != nil {
		t.Fatalf("StepCount error = %v", err)
	}
	if count != 5 {
		t.Errorf("StepCount = %d, want 5", count)
	}

	readings, err := rec.Readings(ctx, "T1")
	if err != nil {
		t.Fatalf("Readings error = %v", err)
	}
	if len(readings) != 5 {
		t.Fatalf("got %d T1 readings, want 5", len(readings))
	}
	for _, r := range readings {
		if r.Units != "K" || r.Value != 300.5 {
			t.Errorf("reading = %+v, want 300.5 K", r)
		}
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	ctx := context.Background()

	rec, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite error = %v", err)
	}
	if err := rec.Record(ctx, 0, sampleReadings()); err != nil {
		t.Fatalf("Record error = %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	count, err := reopened.StepCount(ctx)
	if err != nil {
		t.Fatalf("StepCount error = %v", err)
	}
	if count != 1 {
		t.Errorf("StepCount after reopen = %d, want 1", count)
	}
}
