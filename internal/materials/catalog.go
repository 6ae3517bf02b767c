package materials

import (
	"log/slog"
)

// Catalog registers components and reactions by name for lookup during
// flowsheet construction and simulation. Registering a duplicate name
// warns and overwrites rather than failing, so configuration can be
// redefined iteratively during setup.
type Catalog struct {
	log        *slog.Logger
	components map[string]*Component
	reactions  map[string]*Reaction

	// insertion order, so iteration and fraction ledgers are stable
	componentNames []string
	reactionNames  []string
}

// NewCatalog creates an empty catalog. A nil logger falls back to the
// default slog logger.
func NewCatalog(log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{
		log:        log,
		components: make(map[string]*Component),
		reactions:  make(map[string]*Reaction),
	}
}

// AddComponent validates the record and registers the component.
func (c *Catalog) AddComponent(rec map[string]any) (*Component, error) {
	comp, err := NewComponent(rec)
	if err != nil {
		return nil, err
	}
	if _, exists := c.components[comp.name]; exists {
		c.log.Warn("overwriting existing component", "name", comp.name)
	} else {
		c.componentNames = append(c.componentNames, comp.name)
	}
	c.components[comp.name] = comp
	return comp, nil
}

// AddReaction validates the record and registers the reaction.
func (c *Catalog) AddReaction(rec map[string]any) (*Reaction, error) {
	rxn, err := NewReaction(rec)
	if err != nil {
		return nil, err
	}
	if _, exists := c.reactions[rxn.name]; exists {
		c.log.Warn("overwriting existing reaction", "name", rxn.name)
	} else {
		c.reactionNames = append(c.reactionNames, rxn.name)
	}
	c.reactions[rxn.name] = rxn
	return rxn, nil
}

// Component looks up a registered component by name.
func (c *Catalog) Component(name string) (*Component, error) {
	comp, ok := c.components[name]
	if !ok {
		return nil, &UnknownComponentError{Name: name}
	}
	return comp, nil
}

// Reaction looks up a registered reaction by name.
func (c *Catalog) Reaction(name string) (*Reaction, error) {
	rxn, ok := c.reactions[name]
	if !ok {
		return nil, &UnknownComponentError{Name: name}
	}
	return rxn, nil
}

// ComponentNames returns registered component names in insertion order.
func (c *Catalog) ComponentNames() []string {
	out := make([]string, len(c.componentNames))
	copy(out, c.componentNames)
	return out
}

// ReactionNames returns registered reaction names in insertion order.
func (c *Catalog) ReactionNames() []string {
	out := make([]string, len(c.reactionNames))
	copy(out, c.reactionNames)
	return out
}
