package simulation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tepsim/internal/flowsheet"
	"tepsim/internal/recorder"
	"tepsim/internal/units"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// twoNodeSheet builds a minimal runnable graph: one boundary feed into
// one boundary drain, with a temperature sensor on the joining stream.
func twoNodeSheet(t *testing.T) *flowsheet.Flowsheet {
	t.Helper()
	fs := flowsheet.New(quietLogger(), nil)
	fs.AddUnitOperation(flowsheet.NewInlet("feed", quietLogger()))
	fs.AddUnitOperation(flowsheet.NewOutlet("drain", quietLogger()))

	feed, _ := fs.Unit("feed")
	if err := feed.SetTemperature(units.Must(300, "K")); err != nil {
		t.Fatalf("SetTemperature error = %v", err)
	}

	s := flowsheet.NewStream("S", nil)
	if err := fs.AddStream(s, "feed", "drain", "outlet", "inlet"); err != nil {
		t.Fatalf("AddStream error = %v", err)
	}
	if err := s.SetTemperature(units.Must(300, "K")); err != nil {
		t.Fatalf("SetTemperature error = %v", err)
	}

	sensor := flowsheet.NewSensor("T1", func() (units.Quantity, error) {
		return s.Temperature(), nil
	}, quietLogger())
	fs.AddSensor(sensor)
	if !sensor.Hooked() {
		t.Fatal("sensor failed to hook")
	}
	return fs
}

func TestRunner_RejectsBadSpans(t *testing.T) {
	r := NewRunner(twoNodeSheet(t), nil, quietLogger())

	var dimErr *units.DimensionError
	if err := r.SetDuration(units.Must(10, "kg")); !errors.As(err, &dimErr) {
		t.Errorf("SetDuration with mass error = %v, want *DimensionError", err)
	}
	if err := r.SetDuration(units.Must(-10, "s")); err == nil {
		t.Error("SetDuration accepted a negative duration")
	}
	if err := r.SetTimeStep(units.Must(0, "s")); err == nil {
		t.Error("SetTimeStep accepted zero")
	}
	if _, err := r.TotalSteps(); err == nil {
		t.Error("TotalSteps before configuration should fail")
	}
}

func TestRunner_TotalStepsRoundsUp(t *testing.T) {
	tests := []struct {
		name     string
		duration units.Quantity
		dt       units.Quantity
		want     int
	}{
		{"even division", units.Must(10, "s"), units.Must(1, "s"), 10},
		{"partial step", units.Must(10, "s"), units.Must(3, "s"), 4},
		{"mixed units", units.Must(1, "min"), units.Must(10, "s"), 6},
		{"one long step", units.Must(5, "s"), units.Must(10, "s"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(twoNodeSheet(t), nil, quietLogger())
			if err := r.SetDuration(tt.duration); err != nil {
				t.Fatalf("SetDuration error = %v", err)
			}
			if err := r.SetTimeStep(tt.dt); err != nil {
				t.Fatalf("SetTimeStep error = %v", err)
			}
			got, err := r.TotalSteps()
			if err != nil {
				t.Fatalf("TotalSteps error = %v", err)
			}
			if got != tt.want {
				t.Errorf("TotalSteps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunner_RunRecordsEveryStep(t *testing.T) {
	rec := recorder.NewMemory()
	r := NewRunner(twoNodeSheet(t), rec, quietLogger())
	if err := r.SetDuration(units.Must(5, "s")); err != nil {
		t.Fatalf("SetDuration error = %v", err)
	}
	if err := r.SetTimeStep(units.Must(1, "s")); err != nil {
		t.Fatalf("SetTimeStep error = %v", err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if r.CurrentStep() != 5 {
		t.Errorf("CurrentStep() = %d, want 5", r.CurrentStep())
	}
	if rec.Len() != 5 {
		t.Fatalf("recorded %d steps, want 5", rec.Len())
	}
	_, readings := rec.Step(0)
	if len(readings) != 1 || readings[0].SensorID != "T1" {
		t.Errorf("step 0 readings = %+v, want one T1 reading", readings)
	}
}

func TestRunner_CancelStopsAtStepBoundary(t *testing.T) {
	r := NewRunner(twoNodeSheet(t), nil, quietLogger())
	if err := r.SetDuration(units.Must(100, "s")); err != nil {
		t.Fatalf("SetDuration error = %v", err)
	}
	if err := r.SetTimeStep(units.Must(1, "s")); err != nil {
		t.Fatalf("SetTimeStep error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if r.CurrentStep() != 0 {
		t.Errorf("CurrentStep() = %d, want 0 after immediate cancel", r.CurrentStep())
	}
}

func TestRunner_ResetAllowsRerun(t *testing.T) {
	rec := recorder.NewMemory()
	r := NewRunner(twoNodeSheet(t), rec, quietLogger())
	if err := r.SetDuration(units.Must(2, "s")); err != nil {
		t.Fatalf("SetDuration error = %v", err)
	}
	if err := r.SetTimeStep(units.Must(1, "s")); err != nil {
		t.Fatalf("SetTimeStep error = %v", err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first Run error = %v", err)
	}
	// A finished runner has no steps left.
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("second Run error = %v", err)
	}
	if rec.Len() != 2 {
		t.Errorf("recorded %d steps after no-op rerun, want 2", rec.Len())
	}

	r.Reset()
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run after Reset error = %v", err)
	}
	if rec.Len() != 4 {
		t.Errorf("recorded %d steps after reset rerun, want 4", rec.Len())
	}
}
