package materials

import (
	"fmt"
	"math"

	"tepsim/internal/units"
)

// antoineModel holds Antoine vapor-pressure coefficients together with
// the units the correlation was fit in.
type antoineModel struct {
	A, B, C   float64
	Base      float64
	PressUnit string
	TempUnit  string
}

// polyModel holds quadratic-polynomial coefficients for density or
// specific enthalpy, with the temperature unit the fit expects and the
// unit the result carries.
type polyModel struct {
	A, B, C    float64
	TempUnit   string
	ResultUnit string
}

// Component is an immutable set of physical-property correlations for a
// single chemical species. Build one with NewComponent from a validated
// configuration record; all property methods are pure functions of
// temperature.
type Component struct {
	name      string
	molarMass units.Quantity

	antoine    antoineModel
	liqDensity polyModel
	liqH       polyModel
	gasH       polyModel
	hVap       units.Quantity
}

// NewComponent validates rec against the component schema and builds a
// Component. Keys are matched case-insensitively at every nesting level;
// any missing or extra key is a *SchemaError.
func NewComponent(rec map[string]any) (*Component, error) {
	rec = normalizeKeys(rec)
	if err := checkSchema(rec, componentSchema, ""); err != nil {
		return nil, err
	}

	name, err := recString(rec, "name")
	if err != nil {
		return nil, err
	}
	c := &Component{name: name}

	if c.molarMass, err = valueWithUnits(rec, "molar mass"); err != nil {
		return nil, err
	}
	if err := units.Check(c.molarMass, units.MolarMassDim); err != nil {
		return nil, fmt.Errorf("component %q molar mass: %w", name, err)
	}

	ant := rec["antoines"].(map[string]any)
	if c.antoine, err = parseAntoine(ant); err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}
	if c.liqDensity, err = parsePoly(rec, "liquid density", "density units"); err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}
	if c.liqH, err = parsePoly(rec, "liquid specific enthalpy", "enthalpy units"); err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}
	if c.gasH, err = parsePoly(rec, "gas specific enthalpy", "enthalpy units"); err != nil {
		return nil, fmt.Errorf("component %q: %w", name, err)
	}
	if c.hVap, err = valueWithUnits(rec, "vaporization heat"); err != nil {
		return nil, err
	}
	if err := units.Check(c.hVap, units.SpecificEnthalpyDim); err != nil {
		return nil, fmt.Errorf("component %q vaporization heat: %w", name, err)
	}
	return c, nil
}

// Name returns the component's registered name.
func (c *Component) Name() string { return c.name }

// MolarMass returns the component's molar mass.
func (c *Component) MolarMass() units.Quantity { return c.molarMass }

// VaporPressure evaluates Antoine's equation base^(A + B/(C + T)) with
// the temperature converted into the correlation's fitted unit.
func (c *Component) VaporPressure(temperature units.Quantity) (units.Quantity, error) {
	T, err := temperature.To(c.antoine.TempUnit)
	if err != nil {
		return units.Quantity{}, err
	}
	p := math.Pow(c.antoine.Base, c.antoine.A+c.antoine.B/(c.antoine.C+T.Magnitude()))
	return units.New(p, c.antoine.PressUnit)
}

// LiquidDensity evaluates the quadratic correlation A + (B + C*T)*T.
func (c *Component) LiquidDensity(temperature units.Quantity) (units.Quantity, error) {
	return evalPoly(c.liqDensity, temperature)
}

// LiquidSpecificEnthalpy evaluates (A + (B/2 + C/3*T)*T)*T offset by the
// vaporization heat.
func (c *Component) LiquidSpecificEnthalpy(temperature units.Quantity) (units.Quantity, error) {
	return c.enthalpy(c.liqH, temperature)
}

// GasSpecificEnthalpy evaluates (A + (B/2 + C/3*T)*T)*T offset by the
// vaporization heat.
func (c *Component) GasSpecificEnthalpy(temperature units.Quantity) (units.Quantity, error) {
	return c.enthalpy(c.gasH, temperature)
}

// LiquidSpecificEnthalpyChange returns the temperature derivative of the
// liquid enthalpy correlation, in the correlation's unit per kelvin.
func (c *Component) LiquidSpecificEnthalpyChange(temperature units.Quantity) (units.Quantity, error) {
	return enthalpyChange(c.liqH, temperature)
}

// GasSpecificEnthalpyChange returns the temperature derivative of the
// gas enthalpy correlation, in the correlation's unit per kelvin.
func (c *Component) GasSpecificEnthalpyChange(temperature units.Quantity) (units.Quantity, error) {
	return enthalpyChange(c.gasH, temperature)
}

func (c *Component) enthalpy(m polyModel, temperature units.Quantity) (units.Quantity, error) {
	T, err := temperature.To(m.TempUnit)
	if err != nil {
		return units.Quantity{}, err
	}
	t := T.Magnitude()
	h, err := units.New((m.A+(m.B/2+m.C/3*t)*t)*t, m.ResultUnit)
	if err != nil {
		return units.Quantity{}, err
	}
	return h.Add(c.hVap)
}

func enthalpyChange(m polyModel, temperature units.Quantity) (units.Quantity, error) {
	T, err := temperature.To(m.TempUnit)
	if err != nil {
		return units.Quantity{}, err
	}
	t := T.Magnitude()
	return units.New(m.A+(m.B+m.C*t)*t, m.ResultUnit+" / K")
}

func evalPoly(m polyModel, temperature units.Quantity) (units.Quantity, error) {
	T, err := temperature.To(m.TempUnit)
	if err != nil {
		return units.Quantity{}, err
	}
	t := T.Magnitude()
	return units.New(m.A+(m.B+m.C*t)*t, m.ResultUnit)
}

// valueWithUnits reads a {value, units} leaf pair into a Quantity.
func valueWithUnits(rec map[string]any, key string) (units.Quantity, error) {
	sub := rec[key].(map[string]any)
	val, err := recFloat(sub, "value")
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%s: %w", key, err)
	}
	unitExpr, err := recString(sub, "units")
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%s: %w", key, err)
	}
	q, err := units.New(val, unitExpr)
	if err != nil {
		return units.Quantity{}, fmt.Errorf("%s: %w", key, err)
	}
	return q, nil
}

func parseAntoine(rec map[string]any) (antoineModel, error) {
	var m antoineModel
	var err error
	if m.A, err = recFloat(rec, "a"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	if m.B, err = recFloat(rec, "b"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	if m.C, err = recFloat(rec, "c"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	if m.Base, err = recFloat(rec, "base"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	if m.PressUnit, err = recString(rec, "pressure units"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	if m.TempUnit, err = recString(rec, "temperature units"); err != nil {
		return m, fmt.Errorf("antoines: %w", err)
	}
	return m, nil
}

func parsePoly(rec map[string]any, key, resultKey string) (polyModel, error) {
	sub := rec[key].(map[string]any)
	var m polyModel
	var err error
	if m.A, err = recFloat(sub, "a"); err != nil {
		return m, fmt.Errorf("%s: %w", key, err)
	}
	if m.B, err = recFloat(sub, "b"); err != nil {
		return m, fmt.Errorf("%s: %w", key, err)
	}
	if m.C, err = recFloat(sub, "c"); err != nil {
		return m, fmt.Errorf("%s: %w", key, err)
	}
	if m.TempUnit, err = recString(sub, "temperature units"); err != nil {
		return m, fmt.Errorf("%s: %w", key, err)
	}
	if m.ResultUnit, err = recString(sub, resultKey); err != nil {
		return m, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}
