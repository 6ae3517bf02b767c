package noise

import (
	"errors"
	"math"
	"testing"
)

const (
	numDraws       = 1000
	boundTolerance = 1e-2
)

func TestReseed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"zero", 0},
		{"negative", -5},
		{"multiple of 2^32", 1 << 32},
		{"large multiple of 2^32", 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.seed)
			var seedErr *InvalidSeedError
			if !errors.As(err, &seedErr) {
				t.Fatalf("New(%d) error = %v, want *InvalidSeedError", tt.seed, err)
			}
		})
	}
}

func TestReseed_ReducesLargeSeed(t *testing.T) {
	big, err := New((1 << 32) + 5)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	small, _ := New(5)

	if big.Seed() != 5 {
		t.Fatalf("Seed() = %d, want 5 after reduction", big.Seed())
	}
	for i := 0; i < numDraws; i++ {
		if bv, sv := big.Next(), small.Next(); bv != sv {
			t.Fatalf("draw %d: %d != %d for seeds equal modulo 2^32", i, bv, sv)
		}
	}
}

func TestUniformSigned_LargeSeedStaysInRange(t *testing.T) {
	g, err := New(1_500_000_000_001)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	for i := 0; i < numDraws; i++ {
		if v := g.UniformSigned(); v < -1 || v > 1 {
			t.Fatalf("draw %d = %v, outside [-1, 1]", i, v)
		}
		if g.Seed() <= 0 {
			t.Fatalf("draw %d collapsed the state to %d", i, g.Seed())
		}
	}
}

func TestNext_Deterministic(t *testing.T) {
	a, err := New(12345)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	b, _ := New(12345)

	for i := 0; i < numDraws; i++ {
		if av, bv := a.Next(), b.Next(); av != bv {
			t.Fatalf("draw %d: %d != %d with identical seeds", i, av, bv)
		}
	}
}

func TestNext_Advances(t *testing.T) {
	g, _ := New(1)
	for i := 0; i < numDraws; i++ {
		if g.Next() == g.Next() {
			t.Fatal("consecutive draws returned the same state")
		}
	}
}

func TestUniformSigned_Range(t *testing.T) {
	g := NewRandom()
	for i := 0; i < numDraws; i++ {
		v := g.UniformSigned()
		if v < -1 || v > 1 {
			t.Fatalf("draw %d = %v, outside [-1, 1]", i, v)
		}
	}
}

func TestUniformSigned_Bounds(t *testing.T) {
	g, _ := New(42)
	lb, ub := 0.0, 0.0
	for i := 0; i < numDraws; i++ {
		v := g.UniformSigned()
		lb = math.Min(lb, v)
		ub = math.Max(ub, v)
	}
	if math.Abs(1-ub) >= boundTolerance {
		t.Errorf("sample max = %v, want within %v of 1", ub, boundTolerance)
	}
	if math.Abs(-1-lb) >= boundTolerance {
		t.Errorf("sample min = %v, want within %v of -1", lb, boundTolerance)
	}
}

func TestUniformUnit_Range(t *testing.T) {
	g, _ := New(42)
	lb, ub := 1.0, 0.0
	for i := 0; i < numDraws; i++ {
		v := g.UniformUnit()
		if v < 0 || v > 1 {
			t.Fatalf("draw %d = %v, outside [0, 1]", i, v)
		}
		lb = math.Min(lb, v)
		ub = math.Max(ub, v)
	}
	if math.Abs(1-ub) >= boundTolerance {
		t.Errorf("sample max = %v, want within %v of 1", ub, boundTolerance)
	}
	if math.Abs(lb) >= boundTolerance {
		t.Errorf("sample min = %v, want within %v of 0", lb, boundTolerance)
	}
}

func TestGaussian_Reproducible(t *testing.T) {
	a, _ := New(777)
	b, _ := New(777)
	for i := 0; i < 100; i++ {
		if av, bv := a.Gaussian(2.5), b.Gaussian(2.5); av != bv {
			t.Fatalf("draw %d: %v != %v with identical seeds", i, av, bv)
		}
	}
}

func TestGaussian_ZeroStdv(t *testing.T) {
	g, _ := New(42)
	if v := g.Gaussian(0); v != 0 {
		t.Errorf("Gaussian(0) = %v, want 0", v)
	}
}
