// Package simulation drives a flowsheet through a timed run: a fixed
// number of discrete steps computed from the total duration and time
// step, with sensor readings streamed to a recorder after every step.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"tepsim/internal/flowsheet"
	"tepsim/internal/recorder"
	"tepsim/internal/units"
)

// Runner advances one flowsheet from start to finish. Configure the
// duration and time step, then call Run. The run is strictly
// sequential; units within a step may read state written earlier in
// the same step.
type Runner struct {
	log   *slog.Logger
	sheet *flowsheet.Flowsheet
	rec   recorder.Recorder

	duration units.Quantity
	timeStep units.Quantity

	currentStep int
}

// NewRunner creates a runner over a flowsheet. Readings go to rec; a
// nil recorder discards them, a nil logger falls back to the default.
func NewRunner(sheet *flowsheet.Flowsheet, rec recorder.Recorder, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{log: log, sheet: sheet, rec: rec}
}

// SetDuration stores the checked total run time. It must be a positive
// time quantity.
func (r *Runner) SetDuration(d units.Quantity) error {
	if err := checkSpan(d); err != nil {
		return err
	}
	r.duration = d
	return nil
}

// SetTimeStep stores the checked step size. It must be a positive time
// quantity.
func (r *Runner) SetTimeStep(dt units.Quantity) error {
	if err := checkSpan(dt); err != nil {
		return err
	}
	r.timeStep = dt
	return nil
}

func checkSpan(q units.Quantity) error {
	if err := units.Check(q, units.TimeDim); err != nil {
		return err
	}
	if q.Magnitude() <= 0 {
		return fmt.Errorf("time span must be positive, got %s", q)
	}
	return nil
}

// TotalSteps returns how many steps a full run takes: the duration
// divided by the time step, rounded up so the run always covers the
// full span.
func (r *Runner) TotalSteps() (int, error) {
	if r.duration.Magnitude() <= 0 || r.timeStep.Magnitude() <= 0 {
		return 0, fmt.Errorf("duration and time step must be set before running")
	}
	ratio := r.duration.Div(r.timeStep)
	return int(math.Ceil(ratio.SI())), nil
}

// CurrentStep returns how many steps have completed.
func (r *Runner) CurrentStep() int { return r.currentStep }

// Reset rewinds the step counter so the same runner can repeat a run.
func (r *Runner) Reset() { r.currentStep = 0 }

// Run advances the flowsheet through every remaining step.
// Cancellation is checked at step boundaries only; a step in progress
// always completes. A failed step halts the run and the error
// surfaces verbatim.
func (r *Runner) Run(ctx context.Context) error {
	total, err := r.TotalSteps()
	if err != nil {
		return err
	}
	r.log.Info("starting run", "steps", total, "dt", r.timeStep.String())

	for r.currentStep < total {
		if err := ctx.Err(); err != nil {
			r.log.Info("run cancelled", "completed", r.currentStep, "total", total)
			return err
		}
		readings, err := r.sheet.Step(r.timeStep)
		if err != nil {
			return fmt.Errorf("step %d: %w", r.currentStep, err)
		}
		if r.rec != nil {
			if err := r.rec.Record(ctx, r.currentStep, readings); err != nil {
				return fmt.Errorf("step %d: recording: %w", r.currentStep, err)
			}
		}
		r.currentStep++
	}

	r.log.Info("run complete", "steps", r.currentStep)
	return nil
}
