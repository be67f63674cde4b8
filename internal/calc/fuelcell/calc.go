package fuelcell

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type Input struct {
	PressureAtm          float64        `json:"pressure_atm"`
	TemperatureK         float64        `json:"temperature_k"`
	ElectrodeThicknessUm float64        `json:"electrode_thickness_um"`
	MembraneThicknessUm  float64        `json:"membrane_thickness_um"`
	Solver               *SolverOptions `json:"solver,omitempty"`
}

// Params validates the operating inputs of in.
func (in Input) Params() (ParameterSet, error) {
	return NewParameterSet(in.PressureAtm, in.TemperatureK, in.ElectrodeThicknessUm, in.MembraneThicknessUm)
}

type Result struct {
	Input           Input             `json:"input"`
	Derived         DerivedQuantities `json:"derived"`
	LimitingCurrent float64           `json:"limiting_current"`
	Flood           FloodPoint        `json:"flood"`
	FloodCurrent    float64           `json:"flood_current"`
	PeakPower       Point             `json:"peak_power"`
	Curve           Curve             `json:"curve"`
	Notes           string            `json:"notes"`
}

// Calculator runs the full model with a fixed coefficient set and solver
// settings. The zero value uses the defaults.
type Calculator struct {
	Constants *Constants
	Solver    SolverOptions
}

// Calculate runs the model with the default coefficients.
func Calculate(in Input) (Result, error) {
	return Calculator{}.Calculate(in)
}

func (m Calculator) Calculate(in Input) (Result, error) {
	c := DefaultConstants()
	if m.Constants != nil {
		c = *m.Constants
	}
	opts := m.Solver
	if in.Solver != nil {
		opts = mergeSolver(opts, *in.Solver)
	}

	p, err := in.Params()
	if err != nil {
		return Result{}, err
	}
	d, err := Derive(p, c)
	if err != nil {
		return Result{}, fmt.Errorf("deriving transport quantities: %w", err)
	}
	flood, err := SolveFlood(d, opts)
	if err != nil {
		return Result{}, fmt.Errorf("solving flood point: %w", err)
	}
	curve, err := Sweep(d)
	if err != nil {
		return Result{}, fmt.Errorf("sweeping current density: %w", err)
	}

	return Result{
		Input:           p.Input(),
		Derived:         d,
		LimitingCurrent: d.LimitingCurrent,
		Flood:           flood,
		FloodCurrent:    flood.Current,
		PeakPower:       curve[floats.MaxIdx(curve.PowerDensities())],
		Curve:           curve,
		Notes:           "Activation-limited polarization curve, single cell, steady state, isothermal.",
	}, nil
}

func mergeSolver(base, over SolverOptions) SolverOptions {
	if over.InitialGuess > 0 {
		base.InitialGuess = over.InitialGuess
	}
	if over.Tolerance > 0 {
		base.Tolerance = over.Tolerance
	}
	if over.MaxIter > 0 {
		base.MaxIter = over.MaxIter
	}
	return base
}
