package flowsheet

import (
	"fmt"
	"log/slog"
	"math"

	"tepsim/internal/units"
)

// Vessel is a cylindrical holding unit. Its volume is derived from the
// checked diameter and height and cannot be set directly.
type Vessel struct {
	Node

	diameter units.Quantity
	height   units.Quantity
	hasDims  bool
}

// NewVessel creates a vessel with unset dimensions.
func NewVessel(id string, log *slog.Logger) *Vessel {
	return &Vessel{Node: NewNode(id, log)}
}

// SetDimensions stores the checked cylinder dimensions. Both must be
// positive lengths.
func (v *Vessel) SetDimensions(diameter, height units.Quantity) error {
	if err := units.Check(diameter, units.LengthDim); err != nil {
		return err
	}
	if err := units.Check(height, units.LengthDim); err != nil {
		return err
	}
	if diameter.Magnitude() <= 0 || height.Magnitude() <= 0 {
		return fmt.Errorf("vessel %q: dimensions must be positive", v.ID())
	}
	v.diameter = diameter
	v.height = height
	v.hasDims = true
	return nil
}

// Volume computes the cylinder volume from the stored dimensions.
func (v *Vessel) Volume() (units.Quantity, error) {
	if !v.hasDims {
		return units.Quantity{}, fmt.Errorf("vessel %q: dimensions have not been set", v.ID())
	}
	return v.height.Mul(v.diameter.Pow(2)).Scale(math.Pi / 4), nil
}

// Events holds the vessel state; a bare vessel has no dynamics.
func (v *Vessel) Events(dt units.Quantity) error { return nil }

// NewReactor fails until the reactor mass and energy balance is
// written. Failing at construction keeps a half-built unit out of the
// graph.
func NewReactor(id string, log *slog.Logger) (*Vessel, error) {
	return nil, fmt.Errorf("reactor %q: %w", id, ErrNotImplemented)
}

// NewStripper fails until the stripper column dynamics are written.
func NewStripper(id string, log *slog.Logger) (*Vessel, error) {
	return nil, fmt.Errorf("stripper %q: %w", id, ErrNotImplemented)
}

// NewSeparator fails until the vapor-liquid separator dynamics are
// written.
func NewSeparator(id string, log *slog.Logger) (*Vessel, error) {
	return nil, fmt.Errorf("separator %q: %w", id, ErrNotImplemented)
}
