package units

import (
	"fmt"
	"math"
)

// Quantity is an immutable magnitude tagged with a unit. The zero value
// is a dimensionless zero.
type Quantity struct {
	mag  float64
	unit Unit
}

// New builds a quantity from a magnitude and a unit expression.
func New(mag float64, unitExpr string) (Quantity, error) {
	u, err := ParseUnit(unitExpr)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{mag: mag, unit: u}, nil
}

// Must is New for statically known unit expressions; it panics on a
// malformed expression.
func Must(mag float64, unitExpr string) Quantity {
	q, err := New(mag, unitExpr)
	if err != nil {
		panic(err)
	}
	return q
}

// Rg is the universal gas constant.
var Rg = Must(8.314, "J / mol / K")

// Magnitude returns the numeric value in the quantity's own unit.
func (q Quantity) Magnitude() float64 { return q.mag }

// Unit returns the quantity's unit.
func (q Quantity) Unit() Unit { return q.unit }

// Dimension returns the quantity's dimension vector.
func (q Quantity) Dimension() Dimension { return q.unit.Dim }

// base returns the magnitude expressed in SI base units.
func (q Quantity) base() float64 {
	return q.mag*q.unit.Scale + q.unit.Offset
}

// SI returns the magnitude expressed in SI base units (kg, m, s, K, mol).
func (q Quantity) SI() float64 { return q.base() }

// To converts the quantity into the named unit. The target must share
// the quantity's dimensionality.
func (q Quantity) To(unitExpr string) (Quantity, error) {
	u, err := ParseUnit(unitExpr)
	if err != nil {
		return Quantity{}, err
	}
	if u.Dim != q.unit.Dim {
		return Quantity{}, &DimensionError{Want: u.Dim, Got: q.unit.Dim, Op: "convert"}
	}
	return Quantity{mag: (q.base() - u.Offset) / u.Scale, unit: u}, nil
}

// Add returns q + o with the result in q's unit. The operands must be
// commensurable.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if o.unit.Dim != q.unit.Dim {
		return Quantity{}, &DimensionError{Want: q.unit.Dim, Got: o.unit.Dim, Op: "add"}
	}
	return Quantity{mag: (q.base() + o.base() - o.unit.Offset - q.unit.Offset) / q.unit.Scale, unit: q.unit}, nil
}

// Sub returns q - o with the result in q's unit.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if o.unit.Dim != q.unit.Dim {
		return Quantity{}, &DimensionError{Want: q.unit.Dim, Got: o.unit.Dim, Op: "subtract"}
	}
	// Differences of absolute scales are deltas; offsets cancel.
	return Quantity{mag: (q.base() - o.base()) / q.unit.Scale, unit: dropOffset(q.unit)}, nil
}

// Mul returns q * o; dimensions compose. Absolute-scale operands are
// rebased first.
func (q Quantity) Mul(o Quantity) Quantity {
	a, b := q.rebase(), o.rebase()
	return Quantity{mag: a.mag * b.mag, unit: compose(a.unit, b.unit, 1)}
}

// Div returns q / o; dimensions compose.
func (q Quantity) Div(o Quantity) Quantity {
	a, b := q.rebase(), o.rebase()
	return Quantity{mag: a.mag / b.mag, unit: compose(a.unit, b.unit, -1)}
}

// Pow returns q raised to an integer power.
func (q Quantity) Pow(n int) Quantity {
	a := q.rebase()
	return Quantity{mag: math.Pow(a.mag, float64(n)), unit: pow(a.unit, n)}
}

// AddMagnitude returns q shifted by a bare delta expressed in q's own
// unit.
func (q Quantity) AddMagnitude(f float64) Quantity {
	return Quantity{mag: q.mag + f, unit: q.unit}
}

// Scale returns q multiplied by a bare number.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{mag: q.mag * f, unit: q.unit}
}

// Neg returns q with its magnitude negated.
func (q Quantity) Neg() Quantity {
	return Quantity{mag: -q.mag, unit: q.unit}
}

// rebase rewrites an offset-carrying quantity (celsius, kPag) onto its
// absolute zero-offset scale so multiplicative arithmetic is sound.
func (q Quantity) rebase() Quantity {
	if q.unit.Offset == 0 {
		return q
	}
	return Quantity{mag: q.base(), unit: Unit{Name: baseNameFor(q.unit.Dim), Dim: q.unit.Dim, Scale: 1}}
}

func baseNameFor(d Dimension) string {
	switch d {
	case TemperatureDim:
		return "K"
	case PressureDim:
		return "Pa"
	default:
		return ""
	}
}

// String renders the quantity as "<magnitude> <unit>".
func (q Quantity) String() string {
	if q.unit.Name == "" {
		return fmt.Sprintf("%g", q.mag)
	}
	return fmt.Sprintf("%g %s", q.mag, q.unit.Name)
}

// Check validates that q has the expected dimensionality and returns a
// *DimensionError otherwise. Typed setters throughout the flowsheet call
// this before mutating state.
func Check(q Quantity, want Dimension) error {
	if q.unit.Dim != want {
		return &DimensionError{Want: want, Got: q.unit.Dim}
	}
	return nil
}

// Is is the non-raising variant of Check for call sites that probe among
// candidate bases.
func Is(q Quantity, want Dimension) bool {
	return q.unit.Dim == want
}
