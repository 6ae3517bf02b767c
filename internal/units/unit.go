package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit describes a named measurement unit: its dimension vector, the
// factor that converts one of it into SI base units, and an additive
// offset for absolute scales (celsius, gauge pressures). Offsets only
// participate in conversions between units of the same dimension; any
// unit produced by composition has a zero offset.
type Unit struct {
	Name   string
	Dim    Dimension
	Scale  float64
	Offset float64
}

// catalog maps lowercase unit names and aliases to their definitions.
// Scales are into SI base units (kg, m, s, K, mol).
var catalog = map[string]Unit{
	// Dimensionless
	"":              {Name: "", Dim: Dimensionless, Scale: 1},
	"dimensionless": {Name: "", Dim: Dimensionless, Scale: 1},
	"%":             {Name: "%", Dim: Dimensionless, Scale: 0.01},
	"percent":       {Name: "%", Dim: Dimensionless, Scale: 0.01},

	// Mass
	"kg": {Name: "kg", Dim: MassDim, Scale: 1},
	"g":  {Name: "g", Dim: MassDim, Scale: 1e-3},
	"mg": {Name: "mg", Dim: MassDim, Scale: 1e-6},
	"lb": {Name: "lb", Dim: MassDim, Scale: 0.45359237},

	// Length
	"m":  {Name: "m", Dim: LengthDim, Scale: 1},
	"cm": {Name: "cm", Dim: LengthDim, Scale: 0.01},
	"mm": {Name: "mm", Dim: LengthDim, Scale: 0.001},
	"ft": {Name: "ft", Dim: LengthDim, Scale: 0.3048},
	"in": {Name: "in", Dim: LengthDim, Scale: 0.0254},

	// Volume
	"l":     {Name: "l", Dim: VolumeDim, Scale: 1e-3},
	"liter": {Name: "l", Dim: VolumeDim, Scale: 1e-3},

	// Time
	"s":   {Name: "s", Dim: TimeDim, Scale: 1},
	"sec": {Name: "s", Dim: TimeDim, Scale: 1},
	"min": {Name: "min", Dim: TimeDim, Scale: 60},
	"h":   {Name: "h", Dim: TimeDim, Scale: 3600},
	"hr":  {Name: "h", Dim: TimeDim, Scale: 3600},
	"hour": {Name: "h", Dim: TimeDim, Scale: 3600},
	"day": {Name: "day", Dim: TimeDim, Scale: 86400},

	// Temperature
	"k":          {Name: "K", Dim: TemperatureDim, Scale: 1},
	"kelvin":     {Name: "K", Dim: TemperatureDim, Scale: 1},
	"c":          {Name: "celsius", Dim: TemperatureDim, Scale: 1, Offset: 273.15},
	"degc":       {Name: "celsius", Dim: TemperatureDim, Scale: 1, Offset: 273.15},
	"celsius":    {Name: "celsius", Dim: TemperatureDim, Scale: 1, Offset: 273.15},
	"f":          {Name: "fahrenheit", Dim: TemperatureDim, Scale: 5.0 / 9.0, Offset: 255.3722222222222},
	"degf":       {Name: "fahrenheit", Dim: TemperatureDim, Scale: 5.0 / 9.0, Offset: 255.3722222222222},
	"fahrenheit": {Name: "fahrenheit", Dim: TemperatureDim, Scale: 5.0 / 9.0, Offset: 255.3722222222222},

	// Amount of substance
	"mol":  {Name: "mol", Dim: SubstanceDim, Scale: 1},
	"kmol": {Name: "kmol", Dim: SubstanceDim, Scale: 1000},

	// Pressure
	"pa":   {Name: "Pa", Dim: PressureDim, Scale: 1},
	"kpa":  {Name: "kPa", Dim: PressureDim, Scale: 1e3},
	"mpa":  {Name: "MPa", Dim: PressureDim, Scale: 1e6},
	"bar":  {Name: "bar", Dim: PressureDim, Scale: 1e5},
	"atm":  {Name: "atm", Dim: PressureDim, Scale: 101325},
	"psi":  {Name: "psi", Dim: PressureDim, Scale: 6894.757293168},
	"kpag": {Name: "kPag", Dim: PressureDim, Scale: 1e3, Offset: 101325},
	"psig": {Name: "psig", Dim: PressureDim, Scale: 6894.757293168, Offset: 101325},

	// Energy
	"j":                     {Name: "J", Dim: EnergyDim, Scale: 1},
	"kj":                    {Name: "kJ", Dim: EnergyDim, Scale: 1e3},
	"mj":                    {Name: "MJ", Dim: EnergyDim, Scale: 1e6},
	"cal":                   {Name: "cal", Dim: EnergyDim, Scale: 4.184},
	"kcal":                  {Name: "kcal", Dim: EnergyDim, Scale: 4184},
	"btu":                   {Name: "BTU", Dim: EnergyDim, Scale: 1055.05585262},
	"british_thermal_unit":  {Name: "BTU", Dim: EnergyDim, Scale: 1055.05585262},

	// Power
	"w":  {Name: "W", Dim: PowerDim, Scale: 1},
	"kw": {Name: "kW", Dim: PowerDim, Scale: 1e3},

	// Rotation and flow shorthands that appear in plant measurement lists
	"rpm":   {Name: "rpm", Dim: Dimension{Time: -1}, Scale: 1.0 / 60.0},
	"kscmh": {Name: "kscmh", Dim: VolumeFlowDim, Scale: 1000.0 / 3600.0},
}

// ParseUnit resolves a unit expression into a Unit. Expressions combine
// catalog names with "*", "/" and integer "**" exponents, evaluated left
// to right ("kJ / kg / K", "lb / ft ** 3"). Names are case-insensitive.
func ParseUnit(expr string) (Unit, error) {
	toks := tokenize(expr)
	if len(toks) == 0 {
		return catalog[""], nil
	}

	u, rest, err := parseTerm(toks)
	if err != nil {
		return Unit{}, err
	}
	for len(rest) > 0 {
		op := rest[0]
		if op != "*" && op != "/" {
			return Unit{}, fmt.Errorf("unit %q: unexpected token %q", expr, op)
		}
		var rhs Unit
		rhs, rest, err = parseTerm(rest[1:])
		if err != nil {
			return Unit{}, err
		}
		if op == "*" {
			u = compose(u, rhs, 1)
		} else {
			u = compose(u, rhs, -1)
		}
	}
	return u, nil
}

// parseTerm consumes one unit name with an optional "** n" exponent.
func parseTerm(toks []string) (Unit, []string, error) {
	if len(toks) == 0 {
		return Unit{}, nil, fmt.Errorf("unit expression ended unexpectedly")
	}
	name := strings.ToLower(toks[0])
	u, ok := catalog[name]
	if !ok {
		return Unit{}, nil, fmt.Errorf("unknown unit %q", toks[0])
	}
	toks = toks[1:]
	if len(toks) >= 2 && toks[0] == "**" {
		n, err := strconv.Atoi(toks[1])
		if err != nil {
			return Unit{}, nil, fmt.Errorf("unit exponent %q is not an integer", toks[1])
		}
		u = pow(u, n)
		toks = toks[2:]
	}
	return u, toks, nil
}

// compose multiplies lhs by rhs^sign. Offsets do not survive composition;
// offset units are first rebased onto their zero-offset equivalent.
func compose(a, b Unit, sign int) Unit {
	a = dropOffset(a)
	b = dropOffset(b)
	bName := b.Name
	if sign < 0 {
		b = pow(b, -1)
	}
	name := a.Name
	switch {
	case name == "":
		name = b.Name
	case bName != "":
		if sign < 0 {
			name = a.Name + " / " + bName
		} else {
			name = a.Name + " * " + bName
		}
	}
	return Unit{Name: name, Dim: a.Dim.Mul(b.Dim), Scale: a.Scale * b.Scale}
}

func pow(u Unit, n int) Unit {
	u = dropOffset(u)
	scale := 1.0
	for i := 0; i < abs(n); i++ {
		scale *= u.Scale
	}
	if n < 0 {
		scale = 1 / scale
	}
	name := u.Name
	if n != 1 && name != "" {
		name = fmt.Sprintf("%s^%d", u.Name, n)
	}
	return Unit{Name: name, Dim: u.Dim.Pow(n), Scale: scale}
}

// dropOffset rebases an offset unit (celsius, kPag) onto the absolute
// scale it measures. Composite units always measure differences, where
// the offset is meaningless.
func dropOffset(u Unit) Unit {
	if u.Offset == 0 {
		return u
	}
	return Unit{Name: u.Name, Dim: u.Dim, Scale: u.Scale}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// tokenize splits a unit expression into names, operators and exponents.
// Operators need not be surrounded by whitespace.
func tokenize(expr string) []string {
	expr = strings.ReplaceAll(expr, "**", " ** ")
	var b strings.Builder
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		// Lone * and / get padded; ** was already spaced out above.
		if ch == '/' {
			b.WriteString(" / ")
			continue
		}
		if ch == '*' && !(i > 0 && expr[i-1] == '*') && !(i+1 < len(expr) && expr[i+1] == '*') {
			b.WriteString(" * ")
			continue
		}
		b.WriteByte(ch)
	}
	return strings.Fields(b.String())
}
