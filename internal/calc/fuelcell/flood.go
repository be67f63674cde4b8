package fuelcell

import (
	"errors"
	"fmt"
	"math"

	"Polarcell/internal/calc/solver"
)

// FloodScale converts the flood equation root into the flooding current.
const FloodScale = 10.0

// SolverOptions tunes the flood point search. Zero values take defaults.
type SolverOptions struct {
	InitialGuess float64 `json:"initial_guess,omitempty"`
	Tolerance    float64 `json:"tolerance,omitempty"`
	MaxIter      int     `json:"max_iter,omitempty"`
	ScanCells    int     `json:"-"`
}

// DefaultSolverOptions: guess 1, |f| < 1e-6, 200 iterations.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{InitialGuess: 1, Tolerance: 1e-6, MaxIter: 200, ScanCells: 400}
}

func (o SolverOptions) withDefaults() SolverOptions {
	def := DefaultSolverOptions()
	if o.InitialGuess <= 0 {
		o.InitialGuess = def.InitialGuess
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	if o.MaxIter <= 0 {
		o.MaxIter = def.MaxIter
	}
	if o.ScanCells <= 0 {
		o.ScanCells = def.ScanCells
	}
	return o
}

// FloodPoint is the converged root of the flood equation.
type FloodPoint struct {
	Root       float64 `json:"root"`
	Current    float64 `json:"flood_current"` // FloodScale * Root
	Residual   float64 `json:"residual"`
	Iterations int     `json:"iterations"`
}

// FloodEquation evaluates the membrane water balance residual at x for the
// given derived quantities. It is defined on 0 < x < d.Prod.
func FloodEquation(d DerivedQuantities, x float64) float64 {
	c := d.Constants
	F, R, T := c.Faraday, c.GasConstant, d.Temperature
	pa, ta := d.PressureAnode, d.ThicknessAnode

	drag := 11 * (d.Prod/x - 1) / c.Cdrag
	// anode water activity
	a := pa * (d.XWaterAnode - R*T*(d.Prod-x)*ta/(pa*c.DHydrogenH2O*2*F)) / d.SatPressure
	lambda := 0.043 + 17.18*a - 39.85*a*a + 36*a*a*a
	swell := math.Exp(x * c.Cdrag * c.MembraneEW * ta / (22 * F * c.MembraneRho * d.DWater))
	return 13.373 - drag - (lambda-drag)*swell
}

// SolveFlood finds x* in (0, d.Prod) with |FloodEquation(d, x*)| below the
// tolerance. Failures are *RootError values.
func SolveFlood(d DerivedQuantities, opts SolverOptions) (FloodPoint, error) {
	opts = opts.withDefaults()
	f := func(x float64) float64 { return FloodEquation(d, x) }

	if !(d.Prod > 0) {
		return FloodPoint{}, &RootError{
			Iterate:  opts.InitialGuess,
			Residual: math.NaN(),
			Err:      fmt.Errorf("empty search interval (0, %g)", d.Prod),
		}
	}

	a, b, err := solver.Bracket(f, 0, d.Prod, opts.InitialGuess, opts.ScanCells)
	if err != nil {
		return FloodPoint{}, &RootError{
			Iterate:  opts.InitialGuess,
			Residual: f(opts.InitialGuess),
			Err:      err,
		}
	}
	root, err := solver.Brent(f, a, b, solver.Options{Tolerance: opts.Tolerance, MaxIter: opts.MaxIter})
	if err != nil {
		return FloodPoint{}, &RootError{
			Iterate:    root.X,
			Residual:   root.Residual,
			Iterations: root.Iterations,
			Err:        err,
		}
	}
	if math.Abs(root.Residual) >= opts.Tolerance {
		return FloodPoint{}, &RootError{
			Iterate:    root.X,
			Residual:   root.Residual,
			Iterations: root.Iterations,
			Err:        errors.New("residual above tolerance"),
		}
	}
	return FloodPoint{
		Root:       root.X,
		Current:    FloodScale * root.X,
		Residual:   root.Residual,
		Iterations: root.Iterations,
	}, nil
}
