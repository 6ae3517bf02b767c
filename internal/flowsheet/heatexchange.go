package flowsheet

import (
	"fmt"
	"log/slog"
	"math"

	"tepsim/internal/units"
)

// Heat exchanger port names. The thermal side carries the cooling or
// heating fluid; the process side carries the fluid being conditioned.
const (
	ThermalInletPort  = "thermal-inlet"
	ThermalOutletPort = "thermal-outlet"
	ProcessInletPort  = "process-inlet"
	ProcessOutletPort = "process-outlet"
)

// specificHeatDim is energy per mass per temperature.
var specificHeatDim = units.SpecificEnthalpyDim.Div(units.TemperatureDim)

// HeatExchanger couples a thermal fluid loop to a process stream and
// advances the thermal outlet temperature each step from the duty
// imbalance between the two sides.
type HeatExchanger struct {
	Node

	thermalVolume units.Quantity
	heatCapacity  units.Quantity
	density       units.Quantity
	hasFluid      bool
}

// NewHeatExchanger creates a heat exchanger whose thermal loop holds
// the given piping volume.
func NewHeatExchanger(id string, log *slog.Logger, thermalVolume units.Quantity) (*HeatExchanger, error) {
	if err := units.Check(thermalVolume, units.VolumeDim); err != nil {
		return nil, err
	}
	return &HeatExchanger{Node: NewNode(id, log), thermalVolume: thermalVolume}, nil
}

// SetThermalFluid stores the thermal fluid's checked specific heat
// capacity and density.
func (hx *HeatExchanger) SetThermalFluid(heatCapacity, density units.Quantity) error {
	if err := units.Check(heatCapacity, specificHeatDim); err != nil {
		return err
	}
	if err := units.Check(density, units.DensityDim); err != nil {
		return err
	}
	hx.heatCapacity = heatCapacity
	hx.density = density
	hx.hasFluid = true
	return nil
}

// overallHeatTransferCoefficient follows the stripper-condenser fit:
// the coefficient saturates as the process outlet flow grows.
func (hx *HeatExchanger) overallHeatTransferCoefficient(processFlow float64) float64 {
	return 0.404655 * (1 - 1/(1+math.Pow(processFlow, 4)))
}

// thermalHeatDuty is the heat the thermal fluid gives up across the
// exchanger, in watts.
func (hx *HeatExchanger) thermalHeatDuty(tinK, toutK, massFlow float64) float64 {
	return massFlow * hx.heatCapacity.SI() * (tinK - toutK)
}

// processHeatDuty is the heat the process fluid absorbs, in watts.
func (hx *HeatExchanger) processHeatDuty(u, thermalOutK, processOutK float64) float64 {
	return u * (thermalOutK - processOutK)
}

// Events updates the thermal outlet temperature from the duty
// imbalance integrated over the time step.
func (hx *HeatExchanger) Events(dt units.Quantity) error {
	if !hx.hasFluid {
		return fmt.Errorf("heat exchanger %q: thermal fluid has not been set", hx.ID())
	}
	tin, ok := hx.Inlet(ThermalInletPort)
	if !ok {
		return fmt.Errorf("heat exchanger %q: no thermal inlet wired", hx.ID())
	}
	tout, ok := hx.Outlet(ThermalOutletPort)
	if !ok {
		return fmt.Errorf("heat exchanger %q: no thermal outlet wired", hx.ID())
	}
	pout, ok := hx.Outlet(ProcessOutletPort)
	if !ok {
		return fmt.Errorf("heat exchanger %q: no process outlet wired", hx.ID())
	}
	for _, s := range []*Stream{tin, tout, pout} {
		if !units.Is(s.Temperature(), units.TemperatureDim) {
			return fmt.Errorf("heat exchanger %q: stream %q temperature not initialized", hx.ID(), s.ID())
		}
	}

	tinK, err := tin.Temperature().To("K")
	if err != nil {
		return err
	}
	toutK, err := tout.Temperature().To("K")
	if err != nil {
		return err
	}
	poutK, err := pout.Temperature().To("K")
	if err != nil {
		return err
	}

	u := hx.overallHeatTransferCoefficient(pout.Composition.Total().SI())
	qThermal := hx.thermalHeatDuty(tinK.Magnitude(), toutK.Magnitude(), tin.Composition.Total().SI())
	qProcess := hx.processHeatDuty(u, toutK.Magnitude(), poutK.Magnitude())

	thermalMass := hx.density.SI() * hx.thermalVolume.SI()
	heatCapacity := hx.heatCapacity.SI() * thermalMass
	ratePerSecond := (qThermal - qProcess) / heatCapacity

	newTemp := toutK.Magnitude() + dt.SI()*ratePerSecond
	return tout.SetTemperature(units.Must(newTemp, "K"))
}
