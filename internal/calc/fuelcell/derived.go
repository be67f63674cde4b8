package fuelcell

import "math"

// DerivedQuantities are the transport quantities computed once per parameter
// set. They also carry the coefficient set they were derived with, so the
// flood equation and the sweep need nothing else.
type DerivedQuantities struct {
	Temperature       float64 `json:"temperature_k"`
	PressureAnode     float64 `json:"pressure_anode_pa"`
	PressureCathode   float64 `json:"pressure_cathode_pa"`
	ThicknessAnode    float64 `json:"thickness_anode_m"`
	ThicknessCathode  float64 `json:"thickness_cathode_m"`
	ThicknessMembrane float64 `json:"thickness_membrane_m"`
	SatPressure       float64 `json:"sat_pressure_pa"`
	LimitingCurrent   float64 `json:"limiting_current"` // iL, A/m2
	DWater            float64 `json:"d_water"`          // D_WN, m2/s
	XWaterAnode       float64 `json:"x_h2o_anode"`      // X_W_I
	XNitrogenCathode  float64 `json:"x_n2_cathode"`     // X_N_IV
	XWaterSat         float64 `json:"x_h2o_sat"`        // X_W_III
	Prod              float64 `json:"prod"`

	Constants Constants `json:"-"`
}

// Derive computes the transport quantities for p under c. It is a pure
// function of its arguments.
//
// Pressures low enough that the saturated water fraction exceeds one (about
// 0.307 atm with the default constants) are rejected with a DomainError on
// x_h2o_sat rather than extrapolated.
func Derive(p ParameterSet, c Constants) (DerivedQuantities, error) {
	if err := p.validate(); err != nil {
		return DerivedQuantities{}, err
	}
	if err := c.Validate(); err != nil {
		return DerivedQuantities{}, err
	}

	F, R, T := c.Faraday, c.GasConstant, p.temperature
	d := DerivedQuantities{
		Temperature:       T,
		PressureAnode:     p.pressure * Atm,
		PressureCathode:   p.pressure * Atm,
		ThicknessAnode:    p.electrode * 1e-6,
		ThicknessCathode:  p.electrode * 1e-6,
		ThicknessMembrane: p.membrane * 1e-6,
		SatPressure:       c.SatPressure * Atm,
		Constants:         c,
	}
	pc, tc := d.PressureCathode, d.ThicknessCathode

	d.LimitingCurrent = 4 * F * pc * c.DOxygenH2O * c.XOxygenIn / (R * T * tc)
	d.DWater = c.DWaterRef * math.Exp(c.DWaterAct*(1/c.TRef-1/T))
	d.XWaterAnode = 1 - c.XHydrogenIn
	d.XNitrogenCathode = 1 - c.XOxygenIn - c.XWaterIn
	d.XWaterSat = d.SatPressure / pc
	d.Prod = (d.XWaterSat - c.XWaterIn) * pc * c.DOxygenH2O * 2 * F / (R * T * tc)

	if err := d.check(); err != nil {
		return DerivedQuantities{}, err
	}
	return d, nil
}

func (d DerivedQuantities) check() error {
	values := []struct {
		name string
		v    float64
	}{
		{"pressure_cathode_pa", d.PressureCathode},
		{"thickness_cathode_m", d.ThicknessCathode},
		{"thickness_membrane_m", d.ThicknessMembrane},
		{"limiting_current", d.LimitingCurrent},
		{"d_water", d.DWater},
		{"prod", d.Prod},
	}
	for _, q := range values {
		if math.IsNaN(q.v) || math.IsInf(q.v, 0) {
			return &DomainError{Quantity: q.name, Value: q.v, Step: -1}
		}
	}
	// underflow of the unit conversions leaves zeros behind
	for _, q := range values[:5] {
		if q.v <= 0 {
			return &DomainError{Quantity: q.name, Value: q.v, Step: -1}
		}
	}
	for _, q := range []struct {
		name string
		v    float64
	}{
		{"x_h2o_anode", d.XWaterAnode},
		{"x_n2_cathode", d.XNitrogenCathode},
		{"x_h2o_sat", d.XWaterSat},
	} {
		if !(q.v >= 0 && q.v <= 1) {
			return &DomainError{Quantity: q.name, Value: q.v, Step: -1}
		}
	}
	return nil
}

// MoleFractions lists every gas mole fraction the model uses, keyed by
// symbol.
func (d DerivedQuantities) MoleFractions() map[string]float64 {
	c := d.Constants
	return map[string]float64{
		"X_H_I":   c.XHydrogenIn,
		"X_W_I":   d.XWaterAnode,
		"X_O_IV":  c.XOxygenIn,
		"X_W_IV":  c.XWaterIn,
		"X_N_IV":  d.XNitrogenCathode,
		"X_W_III": d.XWaterSat,
	}
}
