package flowsheet

import (
	"log/slog"

	"tepsim/internal/units"
)

// Inlet is a flowsheet boundary node that feeds material in. It has no
// upstream side, so wiring a stream into it is a connection error.
type Inlet struct {
	Node
}

// NewInlet creates a boundary feed node.
func NewInlet(id string, log *slog.Logger) *Inlet {
	return &Inlet{Node: NewNode(id, log)}
}

// AddInlet always fails: a boundary feed has nothing upstream.
func (in *Inlet) AddInlet(s *Stream, port string) error {
	return &ConnectionError{Stream: s.ID(), Unit: in.ID(), Reason: "cannot add an inlet to a flowsheet inlet"}
}

// Events pushes the feed condition onto every outlet stream.
func (in *Inlet) Events(dt units.Quantity) error {
	for _, port := range in.OutletPorts() {
		s, _ := in.Outlet(port)
		if !units.Is(in.Temperature(), units.TemperatureDim) {
			continue
		}
		if err := s.SetTemperature(in.Temperature()); err != nil {
			return err
		}
	}
	return nil
}

// Outlet is a flowsheet boundary node that removes material. It has no
// downstream side, so wiring a stream out of it is a connection error.
type Outlet struct {
	Node
}

// NewOutlet creates a boundary product node.
func NewOutlet(id string, log *slog.Logger) *Outlet {
	return &Outlet{Node: NewNode(id, log)}
}

// AddOutlet always fails: a boundary product has nothing downstream.
func (out *Outlet) AddOutlet(s *Stream, port string) error {
	return &ConnectionError{Stream: s.ID(), Unit: out.ID(), Reason: "cannot add an outlet to a flowsheet outlet"}
}

// Events adopts the state of whatever arrives on the inlet streams.
func (out *Outlet) Events(dt units.Quantity) error {
	for _, port := range out.InletPorts() {
		s, _ := out.Inlet(port)
		if !units.Is(s.Temperature(), units.TemperatureDim) {
			continue
		}
		if err := out.SetTemperature(s.Temperature()); err != nil {
			return err
		}
	}
	return nil
}
