package flowsheet

import (
	"fmt"
	"log/slog"

	"tepsim/internal/units"
)

// Split port names. Flow leaves through the primary outlet when the
// valve is closed and shifts toward the secondary outlet as it opens.
const (
	SplitPrimaryPort   = "primary"
	SplitSecondaryPort = "secondary"
	SplitInletPort     = "inlet"
)

// Split divides one inlet stream across two outlets by a valve
// position in [0, 100].
type Split struct {
	Node

	position float64
}

// NewSplit creates a splitter with the valve closed.
func NewSplit(id string, log *slog.Logger) *Split {
	return &Split{Node: NewNode(id, log)}
}

// Position returns the valve position in [0, 100].
func (sp *Split) Position() float64 { return sp.position }

// SetPosition stores the valve position, clamping out-of-range values
// to the nearest bound with a warning rather than failing.
func (sp *Split) SetPosition(value float64) {
	switch {
	case value > 100:
		sp.logger().Warn("valve position above 100, clamping", "unit", sp.ID(), "position", value)
		value = 100
	case value < 0:
		sp.logger().Warn("valve position below 0, clamping", "unit", sp.ID(), "position", value)
		value = 0
	}
	sp.position = value
}

// Events divides the inlet composition between the two outlets by the
// valve position and forwards the inlet temperature.
func (sp *Split) Events(dt units.Quantity) error {
	in, ok := sp.Inlet(SplitInletPort)
	if !ok {
		return fmt.Errorf("split %q: no inlet wired", sp.ID())
	}
	primary, ok := sp.Outlet(SplitPrimaryPort)
	if !ok {
		return fmt.Errorf("split %q: no primary outlet wired", sp.ID())
	}
	secondary, ok := sp.Outlet(SplitSecondaryPort)
	if !ok {
		return fmt.Errorf("split %q: no secondary outlet wired", sp.ID())
	}

	frac := sp.position / 100
	for _, name := range in.Composition.Names() {
		q, err := in.Composition.Get(name)
		if err != nil {
			return err
		}
		if err := secondary.Composition.Add(name); err != nil {
			return err
		}
		if err := secondary.Composition.Set(name, q.Scale(frac)); err != nil {
			return err
		}
		if err := primary.Composition.Add(name); err != nil {
			return err
		}
		if err := primary.Composition.Set(name, q.Scale(1-frac)); err != nil {
			return err
		}
	}

	if units.Is(in.Temperature(), units.TemperatureDim) {
		if err := primary.SetTemperature(in.Temperature()); err != nil {
			return err
		}
		if err := secondary.SetTemperature(in.Temperature()); err != nil {
			return err
		}
	}
	return nil
}

// JoinOutletPort names the single outlet of a Join.
const JoinOutletPort = "outlet"

// Join mixes every inlet stream ideally into one outlet.
type Join struct {
	Node
}

// NewJoin creates an ideal mixer.
func NewJoin(id string, log *slog.Logger) *Join {
	return &Join{Node: NewNode(id, log)}
}

// Events sums component quantities across the inlets into the outlet
// and sets the outlet temperature to the flow-weighted mean.
func (j *Join) Events(dt units.Quantity) error {
	out, ok := j.Outlet(JoinOutletPort)
	if !ok {
		return fmt.Errorf("join %q: no outlet wired", j.ID())
	}

	totals := make(map[string]units.Quantity)
	var order []string
	weightedTempSum := 0.0
	flowSum := 0.0

	for _, port := range j.InletPorts() {
		in, _ := j.Inlet(port)
		streamFlow := 0.0
		for _, name := range in.Composition.Names() {
			q, err := in.Composition.Get(name)
			if err != nil {
				return err
			}
			streamFlow += q.SI()
			if prev, seen := totals[name]; seen {
				sum, err := prev.Add(q)
				if err != nil {
					return err
				}
				totals[name] = sum
			} else {
				totals[name] = q
				order = append(order, name)
			}
		}
		if units.Is(in.Temperature(), units.TemperatureDim) {
			tK, err := in.Temperature().To("K")
			if err != nil {
				return err
			}
			weightedTempSum += tK.Magnitude() * streamFlow
			flowSum += streamFlow
		}
	}

	for _, name := range order {
		if err := out.Composition.Add(name); err != nil {
			return err
		}
		if err := out.Composition.Set(name, totals[name]); err != nil {
			return err
		}
	}
	if flowSum > 0 {
		if err := out.SetTemperature(units.Must(weightedTempSum/flowSum, "K")); err != nil {
			return err
		}
	}
	return nil
}

// NewCompressor fails until the gas compression behavior is written.
func NewCompressor(id string, log *slog.Logger) (UnitOperation, error) {
	return nil, fmt.Errorf("compressor %q: %w", id, ErrNotImplemented)
}
