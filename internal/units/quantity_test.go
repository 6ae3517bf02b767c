package units

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		expr  string
		dim   Dimension
		scale float64
	}{
		{"kg", MassDim, 1},
		{"g / mol", MolarMassDim, 1e-3},
		{"lb / ft ** 3", DensityDim, 0.45359237 / (0.3048 * 0.3048 * 0.3048)},
		{"cal / g", SpecificEnthalpyDim, 4184},
		{"british_thermal_unit / lb", SpecificEnthalpyDim, 1055.05585262 / 0.45359237},
		{"kJ / kg / K", Dimension{Length: 2, Time: -2, Temperature: -1}, 1e3},
		{"J/mol/K", Dimension{Mass: 1, Length: 2, Time: -2, Temperature: -1, Substance: -1}, 1},
		{"m ** 3 / h", VolumeFlowDim, 1.0 / 3600},
		{"kPa", PressureDim, 1e3},
		{"%", Dimensionless, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			u, err := ParseUnit(tt.expr)
			if err != nil {
				t.Fatalf("ParseUnit(%q) error = %v", tt.expr, err)
			}
			if u.Dim != tt.dim {
				t.Errorf("dim = %v, want %v", u.Dim, tt.dim)
			}
			if !almostEqual(u.Scale, tt.scale, 1e-9*tt.scale) {
				t.Errorf("scale = %v, want %v", u.Scale, tt.scale)
			}
		})
	}
}

func TestParseUnit_Unknown(t *testing.T) {
	if _, err := ParseUnit("furlongs / fortnight"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestConvert_Temperature(t *testing.T) {
	T := Must(293, "kelvin")
	c, err := T.To("celsius")
	if err != nil {
		t.Fatalf("To(celsius) error = %v", err)
	}
	if !almostEqual(c.Magnitude(), 19.85, 1e-9) {
		t.Errorf("293 K = %v celsius, want 19.85", c.Magnitude())
	}

	back, err := c.To("K")
	if err != nil {
		t.Fatalf("To(K) error = %v", err)
	}
	if !almostEqual(back.Magnitude(), 293, 1e-9) {
		t.Errorf("round trip = %v K, want 293", back.Magnitude())
	}
}

func TestConvert_PreservesMagnitude(t *testing.T) {
	p := Must(1, "atm")
	kpa, err := p.To("kPa")
	if err != nil {
		t.Fatalf("To(kPa) error = %v", err)
	}
	if !almostEqual(kpa.Magnitude(), 101.325, 1e-9) {
		t.Errorf("1 atm = %v kPa, want 101.325", kpa.Magnitude())
	}
}

func TestConvert_WrongDimension(t *testing.T) {
	p := Must(10, "psi")
	_, err := p.To("celsius")
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("error = %v, want *DimensionError", err)
	}
}

func TestArithmetic_DimensionsCompose(t *testing.T) {
	e := Must(100, "J")
	dt := Must(4, "s")
	p := e.Div(dt)
	if p.Dimension() != PowerDim {
		t.Errorf("energy/time dim = %v, want %v", p.Dimension(), PowerDim)
	}
	if !almostEqual(p.Magnitude(), 25, 1e-12) {
		t.Errorf("magnitude = %v, want 25", p.Magnitude())
	}

	m := Must(2, "kg")
	h := Must(3, "kJ / kg")
	q := m.Mul(h)
	if q.Dimension() != EnergyDim {
		t.Errorf("mass*(energy/mass) dim = %v, want %v", q.Dimension(), EnergyDim)
	}
}

func TestAdd_MixedUnits(t *testing.T) {
	a := Must(1, "m")
	b := Must(50, "cm")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if !almostEqual(sum.Magnitude(), 1.5, 1e-12) {
		t.Errorf("1 m + 50 cm = %v m, want 1.5", sum.Magnitude())
	}

	if _, err := a.Add(Must(1, "s")); err == nil {
		t.Error("adding length to time should fail")
	}
}

func TestAdd_TemperatureDelta(t *testing.T) {
	T := Must(20, "celsius")
	dT := Must(5, "K")
	sum, err := T.Add(dT)
	if err != nil {
		t.Fatalf("Add error = %v", err)
	}
	if !almostEqual(sum.Magnitude(), 25, 1e-9) {
		t.Errorf("20 celsius + 5 K = %v celsius, want 25", sum.Magnitude())
	}
}

func TestNeg(t *testing.T) {
	q := Must(5, "kJ / kg").Neg()
	if q.Magnitude() != -5 {
		t.Errorf("Neg magnitude = %v, want -5", q.Magnitude())
	}
	if q.Dimension() != SpecificEnthalpyDim {
		t.Errorf("Neg changed the dimension: %v", q.Dimension())
	}
}

func TestCheck(t *testing.T) {
	T := Must(300, "K")
	if err := Check(T, TemperatureDim); err != nil {
		t.Errorf("Check(temperature) error = %v", err)
	}
	err := Check(T, PressureDim)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("error = %v, want *DimensionError", err)
	}
	if Is(T, PressureDim) {
		t.Error("Is(temperature, pressure) = true, want false")
	}
	if !Is(T, TemperatureDim) {
		t.Error("Is(temperature, temperature) = false, want true")
	}
}

func TestPow(t *testing.T) {
	d := Must(2, "m")
	v := d.Pow(3)
	if v.Dimension() != VolumeDim {
		t.Errorf("m^3 dim = %v, want %v", v.Dimension(), VolumeDim)
	}
	if !almostEqual(v.Magnitude(), 8, 1e-12) {
		t.Errorf("2^3 = %v, want 8", v.Magnitude())
	}
}
