package flowsheet

import (
	"fmt"
	"log/slog"

	"tepsim/internal/units"
)

// UnitOperation is a graph node. Variants share the Node bookkeeping
// (ports, temperature, pressure) and differ in their per-step Events
// behavior.
type UnitOperation interface {
	ID() string

	Temperature() units.Quantity
	SetTemperature(units.Quantity) error
	Pressure() units.Quantity
	SetPressure(units.Quantity) error

	AddInlet(s *Stream, port string) error
	AddOutlet(s *Stream, port string) error
	Inlet(port string) (*Stream, bool)
	Outlet(port string) (*Stream, bool)
	InletPorts() []string
	OutletPorts() []string

	// The step cycle: Preprocess validates the time step, Events runs
	// the variant's physical update, Postprocess cleans up.
	Preprocess(dt units.Quantity) error
	Events(dt units.Quantity) error
	Postprocess() error
}

// Step advances one unit operation through its full three-phase cycle.
func Step(u UnitOperation, dt units.Quantity) error {
	if err := u.Preprocess(dt); err != nil {
		return fmt.Errorf("unit %q preprocess: %w", u.ID(), err)
	}
	if err := u.Events(dt); err != nil {
		return fmt.Errorf("unit %q events: %w", u.ID(), err)
	}
	if err := u.Postprocess(); err != nil {
		return fmt.Errorf("unit %q postprocess: %w", u.ID(), err)
	}
	return nil
}

// Node carries the bookkeeping every unit operation shares. Variants
// embed it and override Events.
type Node struct {
	id  string
	log *slog.Logger

	temperature units.Quantity
	pressure    units.Quantity

	inlets      map[string]*Stream
	outlets     map[string]*Stream
	inletOrder  []string
	outletOrder []string
}

// NewNode creates the shared bookkeeping for a unit operation. A nil
// logger falls back to the default slog logger.
func NewNode(id string, log *slog.Logger) Node {
	if log == nil {
		log = slog.Default()
	}
	return Node{
		id:      id,
		log:     log,
		inlets:  make(map[string]*Stream),
		outlets: make(map[string]*Stream),
	}
}

// ID returns the unit identifier.
func (n *Node) ID() string { return n.id }

// Temperature returns the unit's operating temperature.
func (n *Node) Temperature() units.Quantity { return n.temperature }

// SetTemperature stores a dimension-checked temperature.
func (n *Node) SetTemperature(q units.Quantity) error {
	if err := units.Check(q, units.TemperatureDim); err != nil {
		return err
	}
	n.temperature = q
	return nil
}

// Pressure returns the unit's operating pressure.
func (n *Node) Pressure() units.Quantity { return n.pressure }

// SetPressure stores a dimension-checked pressure.
func (n *Node) SetPressure(q units.Quantity) error {
	if err := units.Check(q, units.PressureDim); err != nil {
		return err
	}
	n.pressure = q
	return nil
}

// AddInlet records a stream on a named inlet port, warning if the port
// was already wired.
func (n *Node) AddInlet(s *Stream, port string) error {
	if _, exists := n.inlets[port]; exists {
		n.log.Warn("overwriting inlet port", "unit", n.id, "port", port, "stream", s.ID())
	} else {
		n.inletOrder = append(n.inletOrder, port)
	}
	n.inlets[port] = s
	return nil
}

// AddOutlet records a stream on a named outlet port, warning if the
// port was already wired.
func (n *Node) AddOutlet(s *Stream, port string) error {
	if _, exists := n.outlets[port]; exists {
		n.log.Warn("overwriting outlet port", "unit", n.id, "port", port, "stream", s.ID())
	} else {
		n.outletOrder = append(n.outletOrder, port)
	}
	n.outlets[port] = s
	return nil
}

// Inlet returns the stream wired to a named inlet port.
func (n *Node) Inlet(port string) (*Stream, bool) {
	s, ok := n.inlets[port]
	return s, ok
}

// Outlet returns the stream wired to a named outlet port.
func (n *Node) Outlet(port string) (*Stream, bool) {
	s, ok := n.outlets[port]
	return s, ok
}

// InletPorts returns inlet port names in wiring order.
func (n *Node) InletPorts() []string {
	out := make([]string, len(n.inletOrder))
	copy(out, n.inletOrder)
	return out
}

// OutletPorts returns outlet port names in wiring order.
func (n *Node) OutletPorts() []string {
	out := make([]string, len(n.outletOrder))
	copy(out, n.outletOrder)
	return out
}

// Preprocess validates that dt is a positive, time-dimensioned step.
func (n *Node) Preprocess(dt units.Quantity) error {
	if err := units.Check(dt, units.TimeDim); err != nil {
		return err
	}
	if dt.Magnitude() <= 0 {
		return fmt.Errorf("time step must be positive, got %s", dt)
	}
	return nil
}

// Events is the variant-specific physical update. The base node has no
// behavior of its own.
func (n *Node) Events(dt units.Quantity) error {
	return fmt.Errorf("unit %q: %w", n.id, ErrNotImplemented)
}

// Postprocess is an optional cleanup phase; the default is a no-op.
func (n *Node) Postprocess() error { return nil }

func (n *Node) logger() *slog.Logger { return n.log }

// restoreOutlet undoes an AddOutlet made while wiring a stream: it
// reinstates the stream the port held before, or clears the port if it
// was newly added.
func (n *Node) restoreOutlet(port string, prev *Stream, had bool) {
	if had {
		n.outlets[port] = prev
		return
	}
	delete(n.outlets, port)
	for i, p := range n.outletOrder {
		if p == port {
			n.outletOrder = append(n.outletOrder[:i], n.outletOrder[i+1:]...)
			break
		}
	}
}

type outletRestorer interface {
	restoreOutlet(port string, prev *Stream, had bool)
}

// Connect wires a stream from a source unit's outlet port to a sink
// unit's inlet port, updating the stream's endpoints and both units'
// port maps. Self-connections are rejected. A failure on either
// endpoint leaves both port maps as they were.
func Connect(s *Stream, source, sink UnitOperation, sourcePort, sinkPort string) error {
	if source == nil || sink == nil {
		return &ConnectionError{Stream: s.ID(), Reason: "both endpoints are required"}
	}
	if source == sink {
		return &ConnectionError{Stream: s.ID(), Unit: source.ID(), Reason: "self connection"}
	}
	prev, had := source.Outlet(sourcePort)
	if err := source.AddOutlet(s, sourcePort); err != nil {
		return err
	}
	if err := sink.AddInlet(s, sinkPort); err != nil {
		if n, ok := source.(outletRestorer); ok {
			n.restoreOutlet(sourcePort, prev, had)
		}
		return err
	}
	s.source = source
	s.sink = sink
	return nil
}
