// Package composition keeps per-stream and per-vessel species
// bookkeeping. A Ledger stores component quantities on a single basis
// (mass, or mass flow) and derives mass- and mole-fraction views from
// them; fractions are computed on read, never stored.
package composition

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"tepsim/internal/materials"
	"tepsim/internal/units"
)

// ErrNoCatalog reports a composition write on a ledger built without a
// component catalog.
var ErrNoCatalog = errors.New("composition ledger has no catalog")

// Tolerance bounds how far a fraction map's sum may stray from 1.
const Tolerance = 1e-6

// fractionBasis is the reference total used when converting between
// mass and mole fractions.
const fractionBasis = 100.0

// FractionSumError reports a fraction map whose values do not sum to 1
// within Tolerance.
type FractionSumError struct {
	Sum float64
}

func (e *FractionSumError) Error() string {
	return fmt.Sprintf("fractions sum to %v, want 1 within %v", e.Sum, Tolerance)
}

// Ledger maps component names to stored quantities. All entries share
// one basis: either plain mass or mass flow, fixed by the first write.
type Ledger struct {
	catalog *materials.Catalog
	basis   units.Dimension
	entries map[string]units.Quantity
	names   []string
}

// NewLedger creates an empty ledger whose component names resolve
// against the given catalog. A nil catalog yields a ledger that stays
// empty: reads return zero views and writes fail with ErrNoCatalog.
func NewLedger(catalog *materials.Catalog) *Ledger {
	return &Ledger{
		catalog: catalog,
		entries: make(map[string]units.Quantity),
	}
}

// Add registers components in the ledger with a zero quantity. Every
// name must exist in the catalog.
func (l *Ledger) Add(names ...string) error {
	if l.catalog == nil {
		return ErrNoCatalog
	}
	for _, name := range names {
		if _, err := l.catalog.Component(name); err != nil {
			return err
		}
		if _, ok := l.entries[name]; ok {
			continue
		}
		l.entries[name] = units.Quantity{}
		l.names = append(l.names, name)
	}
	return nil
}

// Names returns the ledger's component names in insertion order.
func (l *Ledger) Names() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Set stores a quantity for a component already in the ledger. The
// quantity must be a mass or a mass flow, and must match the basis
// established by earlier writes.
func (l *Ledger) Set(name string, q units.Quantity) error {
	if _, ok := l.entries[name]; !ok {
		return &materials.UnknownComponentError{Name: name}
	}
	if err := l.checkBasis(q); err != nil {
		return err
	}
	l.entries[name] = q
	return nil
}

// Get returns the stored quantity for a component.
func (l *Ledger) Get(name string) (units.Quantity, error) {
	q, ok := l.entries[name]
	if !ok {
		return units.Quantity{}, &materials.UnknownComponentError{Name: name}
	}
	return q, nil
}

// Moles returns the stored quantity divided by the component's molar
// mass: mol for a mass basis, mol/s for a mass-flow basis.
func (l *Ledger) Moles(name string) (units.Quantity, error) {
	q, err := l.Get(name)
	if err != nil {
		return units.Quantity{}, err
	}
	comp, err := l.catalog.Component(name)
	if err != nil {
		return units.Quantity{}, err
	}
	return q.Div(comp.MolarMass()), nil
}

// SetMassFractions distributes a total mass (or mass flow) across
// components by the given mass-fraction map. Every named component must
// exist in the catalog, fractions must be non-negative, and the sum
// must be 1 within Tolerance.
func (l *Ledger) SetMassFractions(total units.Quantity, fractions map[string]float64) error {
	if l.catalog == nil {
		return ErrNoCatalog
	}
	if err := l.checkBasis(total); err != nil {
		return err
	}
	if err := l.validateFractions(fractions); err != nil {
		return err
	}
	for _, name := range sortedFractionNames(fractions) {
		if err := l.Add(name); err != nil {
			return err
		}
		l.entries[name] = total.Scale(fractions[name])
	}
	return nil
}

// SetMoleFractions distributes a total mass (or mass flow) across
// components by the given mole-fraction map, converting through each
// component's molar mass.
func (l *Ledger) SetMoleFractions(total units.Quantity, fractions map[string]float64) error {
	if l.catalog == nil {
		return ErrNoCatalog
	}
	if err := l.checkBasis(total); err != nil {
		return err
	}
	if err := l.validateFractions(fractions); err != nil {
		return err
	}

	// Convert on a fixed basis: a mole fraction weighs in proportion to
	// its molar mass.
	names := sortedFractionNames(fractions)
	weights := make(map[string]float64, len(fractions))
	sum := 0.0
	for _, name := range names {
		comp, err := l.catalog.Component(name)
		if err != nil {
			return err
		}
		mw, err := comp.MolarMass().To("g / mol")
		if err != nil {
			return err
		}
		w := fractions[name] * fractionBasis * mw.Magnitude()
		weights[name] = w
		sum += w
	}
	for _, name := range names {
		if err := l.Add(name); err != nil {
			return err
		}
		l.entries[name] = total.Scale(weights[name] / sum)
	}
	return nil
}

// MassFractions computes the mass-fraction view of the stored
// quantities. An empty or all-zero ledger returns zero fractions.
func (l *Ledger) MassFractions() map[string]float64 {
	out := make(map[string]float64, len(l.names))
	total := 0.0
	for _, name := range l.names {
		total += l.entries[name].SI()
	}
	for _, name := range l.names {
		if total == 0 {
			out[name] = 0
			continue
		}
		out[name] = l.entries[name].SI() / total
	}
	return out
}

// MoleFractions computes the mole-fraction view of the stored
// quantities through each component's molar mass.
func (l *Ledger) MoleFractions() (map[string]float64, error) {
	moles := make(map[string]float64, len(l.names))
	total := 0.0
	for _, name := range l.names {
		q, err := l.Moles(name)
		if err != nil {
			return nil, err
		}
		moles[name] = q.SI()
		total += q.SI()
	}
	out := make(map[string]float64, len(l.names))
	for _, name := range l.names {
		if total == 0 {
			out[name] = 0
			continue
		}
		out[name] = moles[name] / total
	}
	return out, nil
}

// Total returns the sum of stored quantities in the ledger's basis.
func (l *Ledger) Total() units.Quantity {
	var total units.Quantity
	first := true
	for _, name := range l.names {
		q := l.entries[name]
		if q.Dimension().IsZero() && q.Magnitude() == 0 {
			continue
		}
		if first {
			total = q
			first = false
			continue
		}
		sum, err := total.Add(q)
		if err != nil {
			// Entries passed checkBasis on the way in.
			panic(err)
		}
		total = sum
	}
	return total
}

// checkBasis validates that q matches the ledger's basis, fixing the
// basis on the first non-zero-dimension write.
func (l *Ledger) checkBasis(q units.Quantity) error {
	d := q.Dimension()
	if d != units.MassDim && d != units.MassFlowDim {
		return &units.DimensionError{Want: units.MassDim, Got: d, Op: "ledger basis"}
	}
	if l.basis.IsZero() {
		l.basis = d
		return nil
	}
	if d != l.basis {
		return &units.DimensionError{Want: l.basis, Got: d, Op: "ledger basis"}
	}
	return nil
}

func (l *Ledger) validateFractions(fractions map[string]float64) error {
	sum := 0.0
	for name, frac := range fractions {
		if _, err := l.catalog.Component(name); err != nil {
			return err
		}
		if frac < 0 {
			return fmt.Errorf("fraction for %q is negative: %v", name, frac)
		}
		sum += frac
	}
	if math.Abs(sum-1) > Tolerance {
		return &FractionSumError{Sum: sum}
	}
	return nil
}

// sortedFractionNames orders map keys so conversion arithmetic is
// deterministic run to run.
func sortedFractionNames(fractions map[string]float64) []string {
	names := make([]string, 0, len(fractions))
	for name := range fractions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
