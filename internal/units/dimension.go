// Package units provides dimension-checked physical quantities for the
// flowsheet simulation. A Quantity pairs a magnitude with a unit; a unit
// carries a dimension vector over the five base dimensions the simulation
// needs (mass, length, time, temperature, amount of substance) plus a
// conversion scale into SI base units. Arithmetic between quantities is
// only defined when the dimensions compose consistently, and every typed
// slot in the flowsheet (temperature, pressure, vessel dimensions) routes
// assignments through Check before accepting a value.
package units

import (
	"fmt"
	"strings"
)

// Dimension is a vector of exponents over the base dimensions.
// Two quantities are commensurable when their dimensions are equal.
type Dimension struct {
	Mass        int8
	Length      int8
	Time        int8
	Temperature int8
	Substance   int8
}

// Derived dimensions used throughout the simulation.
var (
	Dimensionless  = Dimension{}
	MassDim        = Dimension{Mass: 1}
	LengthDim      = Dimension{Length: 1}
	TimeDim        = Dimension{Time: 1}
	TemperatureDim = Dimension{Temperature: 1}
	SubstanceDim   = Dimension{Substance: 1}

	VolumeDim           = Dimension{Length: 3}
	PressureDim         = Dimension{Mass: 1, Length: -1, Time: -2}
	EnergyDim           = Dimension{Mass: 1, Length: 2, Time: -2}
	PowerDim            = Dimension{Mass: 1, Length: 2, Time: -3}
	DensityDim          = Dimension{Mass: 1, Length: -3}
	MolarMassDim        = Dimension{Mass: 1, Substance: -1}
	MassFlowDim         = Dimension{Mass: 1, Time: -1}
	VolumeFlowDim       = Dimension{Length: 3, Time: -1}
	SpecificEnthalpyDim = Dimension{Length: 2, Time: -2}
	ConcentrationDim    = Dimension{Substance: 1, Length: -3}
)

// Mul returns the dimension of a product of two quantities.
func (d Dimension) Mul(o Dimension) Dimension {
	return Dimension{
		Mass:        d.Mass + o.Mass,
		Length:      d.Length + o.Length,
		Time:        d.Time + o.Time,
		Temperature: d.Temperature + o.Temperature,
		Substance:   d.Substance + o.Substance,
	}
}

// Div returns the dimension of a quotient of two quantities.
func (d Dimension) Div(o Dimension) Dimension {
	return Dimension{
		Mass:        d.Mass - o.Mass,
		Length:      d.Length - o.Length,
		Time:        d.Time - o.Time,
		Temperature: d.Temperature - o.Temperature,
		Substance:   d.Substance - o.Substance,
	}
}

// Pow returns the dimension raised to an integer power.
func (d Dimension) Pow(n int) Dimension {
	return Dimension{
		Mass:        d.Mass * int8(n),
		Length:      d.Length * int8(n),
		Time:        d.Time * int8(n),
		Temperature: d.Temperature * int8(n),
		Substance:   d.Substance * int8(n),
	}
}

// IsZero reports whether the dimension is dimensionless.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// String renders the dimension as a bracketed product, e.g.
// "[mass * length^-1 * time^-2]". Dimensionless renders as "[]".
func (d Dimension) String() string {
	parts := make([]string, 0, 5)
	add := func(name string, exp int8) {
		if exp == 0 {
			return
		}
		if exp == 1 {
			parts = append(parts, name)
			return
		}
		parts = append(parts, fmt.Sprintf("%s^%d", name, exp))
	}
	add("mass", d.Mass)
	add("length", d.Length)
	add("time", d.Time)
	add("temperature", d.Temperature)
	add("substance", d.Substance)
	return "[" + strings.Join(parts, " * ") + "]"
}

// DimensionError reports a quantity whose dimensionality does not match
// what a call site expects.
type DimensionError struct {
	Want Dimension
	Got  Dimension
	Op   string
}

func (e *DimensionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: expected dimensionality %s, got %s", e.Op, e.Want, e.Got)
	}
	return fmt.Sprintf("expected dimensionality %s, got %s", e.Want, e.Got)
}
