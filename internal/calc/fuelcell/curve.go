package fuelcell

import "math"

// Point is one sample of the polarization curve.
type Point struct {
	CurrentDensity float64 `json:"current_density"` // A/m2
	Voltage        float64 `json:"voltage"`         // V
	Overpotential  float64 `json:"overpotential"`   // V
	PowerDensity   float64 `json:"power_density"`   // W/m2
}

// Curve is an ordered polarization curve, strictly increasing in current
// density.
type Curve []Point

// CurrentDensities returns the x values of the curve.
func (c Curve) CurrentDensities() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.CurrentDensity
	}
	return out
}

// Voltages returns the y values of the curve.
func (c Curve) Voltages() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Voltage
	}
	return out
}

// PowerDensities returns i*V for every point.
func (c Curve) PowerDensities() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.PowerDensity
	}
	return out
}

// GenerateCurve sweeps the current density from iLeak up to just below the
// limiting current and applies the activation overpotential.
func GenerateCurve(p ParameterSet, c Constants) (Curve, error) {
	d, err := Derive(p, c)
	if err != nil {
		return nil, err
	}
	return Sweep(d)
}

// Sweep produces the curve for already derived quantities.
func Sweep(d DerivedQuantities) (Curve, error) {
	c := d.Constants
	n := c.Steps
	step := (1 - c.Epsilon) * d.LimitingCurrent / float64(n)

	curve := make(Curve, n+1)
	for j := 0; j <= n; j++ {
		i := float64(j)*step + c.ILeak
		eta, err := activation(d, i, j)
		if err != nil {
			return nil, err
		}
		v := c.Erev - eta
		curve[j] = Point{
			CurrentDensity: i,
			Voltage:        v,
			Overpotential:  eta,
			PowerDensity:   i * v,
		}
	}
	return curve, nil
}

// activation returns the activation overpotential at current density i.
// Below the exchange current reference it is exactly zero.
func activation(d DerivedQuantities, i float64, step int) (float64, error) {
	c := d.Constants
	if !(i/c.I0Ref > 1) {
		return 0, nil
	}
	F, R, T := c.Faraday, c.GasConstant, d.Temperature
	pc, tc := d.PressureCathode, d.ThicknessCathode

	// oxygen partial pressure at the catalyst layer, atm
	arg := pc * (c.XOxygenIn - R*T*i*tc/(4*F*pc*c.DOxygenH2O)) / Atm
	if !(arg > 0) {
		return 0, &DomainError{Quantity: "oxygen_partial_pressure_atm", Value: arg, Step: step}
	}
	eta := (R * T / (c.Alpha * F)) * (math.Log(i/c.I0Ref) - math.Log(arg))
	if math.IsNaN(eta) || math.IsInf(eta, 0) {
		return 0, &DomainError{Quantity: "overpotential", Value: eta, Step: step}
	}
	return eta, nil
}
