package materials

import (
	"fmt"
	"math"
	"strings"

	"tepsim/internal/units"
)

// validPhases is the accepted set of phase tags for a reaction record.
var validPhases = map[string]bool{
	"gas":    true,
	"vapor":  true,
	"vap":    true,
	"liquid": true,
	"liq":    true,
}

// Reaction is an immutable kinetic record: stoichiometry, rate orders
// and Arrhenius parameters for one reaction. Rate evaluation is a pure
// function of temperature and concentrations.
type Reaction struct {
	name     string
	names    []string
	stoich   []float64
	order    []float64
	preExp   units.Quantity
	actE     units.Quantity
	phase    string
	enthalpy units.Quantity
}

// NewReaction validates rec against the reaction schema and builds a
// Reaction. The components, stoichiometry and rate order arrays must
// have equal length, and the phase tag must name a known phase.
func NewReaction(rec map[string]any) (*Reaction, error) {
	rec = normalizeKeys(rec)
	if err := checkSchema(rec, reactionSchema, ""); err != nil {
		return nil, err
	}

	name, err := recString(rec, "name")
	if err != nil {
		return nil, err
	}
	r := &Reaction{name: name}

	if r.names, err = stringSlice(rec, "components"); err != nil {
		return nil, fmt.Errorf("reaction %q: %w", name, err)
	}
	if r.stoich, err = floatSlice(rec, "stoichiometry"); err != nil {
		return nil, fmt.Errorf("reaction %q: %w", name, err)
	}
	if len(r.stoich) != len(r.names) {
		return nil, &ArityError{
			Context: fmt.Sprintf("reaction %q stoichiometry", name),
			Want:    len(r.names),
			Got:     len(r.stoich),
		}
	}
	if r.order, err = floatSlice(rec, "rate order"); err != nil {
		return nil, fmt.Errorf("reaction %q: %w", name, err)
	}
	if len(r.order) != len(r.names) {
		return nil, &ArityError{
			Context: fmt.Sprintf("reaction %q rate order", name),
			Want:    len(r.names),
			Got:     len(r.order),
		}
	}

	arr := rec["arrhenius"].(map[string]any)
	if r.preExp, err = valUnitsLeaf(arr, "a"); err != nil {
		return nil, fmt.Errorf("reaction %q arrhenius: %w", name, err)
	}
	if r.actE, err = valUnitsLeaf(arr, "ea"); err != nil {
		return nil, fmt.Errorf("reaction %q arrhenius: %w", name, err)
	}

	phase, err := recString(rec, "phase")
	if err != nil {
		return nil, fmt.Errorf("reaction %q: %w", name, err)
	}
	phase = strings.ToLower(phase)
	if !validPhases[phase] {
		return nil, fmt.Errorf("reaction %q: invalid phase %q", name, phase)
	}
	r.phase = phase

	if r.enthalpy, err = valUnitsLeaf(rec, "enthalpy"); err != nil {
		return nil, fmt.Errorf("reaction %q: %w", name, err)
	}
	return r, nil
}

// Name returns the reaction's registered name.
func (r *Reaction) Name() string { return r.name }

// Components returns the component names in declaration order.
func (r *Reaction) Components() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Phase returns the normalized phase tag.
func (r *Reaction) Phase() string { return r.phase }

// Enthalpy returns the reaction enthalpy.
func (r *Reaction) Enthalpy() units.Quantity { return r.enthalpy }

// RateConstant evaluates k = A * exp(-Ea / (Rg * T)).
func (r *Reaction) RateConstant(temperature units.Quantity) (units.Quantity, error) {
	T, err := temperature.To("K")
	if err != nil {
		return units.Quantity{}, err
	}
	exponent := r.actE.Div(units.Rg.Mul(T))
	if err := units.Check(exponent, units.Dimensionless); err != nil {
		return units.Quantity{}, fmt.Errorf("reaction %q activation energy: %w", r.name, err)
	}
	return r.preExp.Scale(math.Exp(-exponent.SI())), nil
}

// Rate multiplies the rate constant by each concentration raised to its
// declared order, skipping zero-order factors. The concentration list
// must match the reaction's component count and every entry must carry
// molar-concentration dimensions.
func (r *Reaction) Rate(temperature units.Quantity, concentrations []units.Quantity) (units.Quantity, error) {
	if len(concentrations) != len(r.names) {
		return units.Quantity{}, &ArityError{
			Context: fmt.Sprintf("reaction %q concentrations", r.name),
			Want:    len(r.names),
			Got:     len(concentrations),
		}
	}
	k, err := r.RateConstant(temperature)
	if err != nil {
		return units.Quantity{}, err
	}
	rate := k
	for i, conc := range concentrations {
		order := r.order[i]
		if order == 0 {
			continue
		}
		if err := units.Check(conc, units.ConcentrationDim); err != nil {
			return units.Quantity{}, fmt.Errorf("reaction %q concentration of %s: %w", r.name, r.names[i], err)
		}
		// Dimension exponents are integral, so the fractional part of a
		// rate order contributes magnitude only.
		whole := int(order)
		if frac := order - float64(whole); frac != 0 {
			rate = rate.Scale(math.Pow(conc.SI(), frac))
		}
		if whole != 0 {
			rate = rate.Mul(conc.Pow(whole))
		}
	}
	return rate, nil
}

// ComponentRates distributes the scalar reaction rate across components
// by their stoichiometric coefficients. Reactants carry negative
// coefficients and so receive negative rates.
func (r *Reaction) ComponentRates(temperature units.Quantity, concentrations []units.Quantity) (map[string]units.Quantity, error) {
	rate, err := r.Rate(temperature, concentrations)
	if err != nil {
		return nil, err
	}
	out := make(map[string]units.Quantity, len(r.names))
	for i, name := range r.names {
		out[name] = rate.Scale(r.stoich[i])
	}
	return out, nil
}

// valUnitsLeaf reads a {val, units} pair into a Quantity.
func valUnitsLeaf(rec map[string]any, key string) (units.Quantity, error) {
	sub, ok := rec[key].(map[string]any)
	if !ok {
		return units.Quantity{}, fmt.Errorf("property %q: expected a mapping, got %T", key, rec[key])
	}
	val, err := recFloat(sub, "val")
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

func stringSlice(rec map[string]any, key string) ([]string, error) {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil, fmt.Errorf("property %q: expected a sequence, got %T", key, rec[key])
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("property %q[%d]: expected a string, got %T", key, i, v)
		}
		out[i] = s
	}
	return out, nil
}

func floatSlice(rec map[string]any, key string) ([]float64, error) {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil, fmt.Errorf("property %q: expected a sequence, got %T", key, rec[key])
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		switch n := v.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("property %q[%d]: expected a number, got %T", key, i, v)
		}
	}
	return out, nil
}
