package fuelcell

import "math"

// ParameterSet holds the operating inputs of one run. Build it with
// NewParameterSet; the fields are read through accessors so a validated set
// cannot be altered afterwards.
type ParameterSet struct {
	pressure    float64 // atm
	temperature float64 // K
	electrode   float64 // µm
	membrane    float64 // µm
}

// NewParameterSet validates and returns a parameter set. Every value must be
// finite and strictly positive.
func NewParameterSet(pressureAtm, temperatureK, electrodeUm, membraneUm float64) (ParameterSet, error) {
	checks := []struct {
		name string
		v    float64
	}{
		{"pressure_atm", pressureAtm},
		{"temperature_k", temperatureK},
		{"electrode_thickness_um", electrodeUm},
		{"membrane_thickness_um", membraneUm},
	}
	for _, c := range checks {
		if !(c.v > 0) || math.IsInf(c.v, 1) {
			return ParameterSet{}, &ParameterError{Name: c.name, Value: c.v}
		}
	}
	return ParameterSet{
		pressure:    pressureAtm,
		temperature: temperatureK,
		electrode:   electrodeUm,
		membrane:    membraneUm,
	}, nil
}

func (p ParameterSet) Pressure() float64           { return p.pressure }
func (p ParameterSet) Temperature() float64        { return p.temperature }
func (p ParameterSet) ElectrodeThickness() float64 { return p.electrode }
func (p ParameterSet) MembraneThickness() float64  { return p.membrane }

// Input returns the wire form of p.
func (p ParameterSet) Input() Input {
	return Input{
		PressureAtm:          p.pressure,
		TemperatureK:         p.temperature,
		ElectrodeThicknessUm: p.electrode,
		MembraneThicknessUm:  p.membrane,
	}
}

// validate rechecks p, so a zero or hand-built set reports its first bad
// field the way NewParameterSet would.
func (p ParameterSet) validate() error {
	_, err := NewParameterSet(p.pressure, p.temperature, p.electrode, p.membrane)
	return err
}
