package fuelcell

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
)

// Atm is one standard atmosphere in Pa.
const Atm = 101325.0

// Constants holds the physical constants and empirical coefficients of the
// model. Values are never modified by the model itself.
type Constants struct {
	Faraday      float64 `toml:"faraday" json:"faraday"`             // C/mol
	GasConstant  float64 `toml:"gas_constant" json:"gas_constant"`   // J/(mol K)
	Erev         float64 `toml:"erev" json:"erev"`                   // V
	ILeak        float64 `toml:"i_leak" json:"i_leak"`               // A/m2
	Cdrag        float64 `toml:"c_drag" json:"c_drag"`               // electro-osmotic drag
	Steps        int     `toml:"steps" json:"steps"`                 // NoS
	I0Ref        float64 `toml:"i0_ref" json:"i0_ref"`               // A/m2
	Alpha        float64 `toml:"alpha" json:"alpha"`                 // charge transfer
	SatPressure  float64 `toml:"sat_pressure_atm" json:"sat_pressure_atm"`
	XHydrogenIn  float64 `toml:"x_h2_anode" json:"x_h2_anode"`       // X_H_I
	XOxygenIn    float64 `toml:"x_o2_cathode" json:"x_o2_cathode"`   // X_O_IV
	XWaterIn     float64 `toml:"x_h2o_cathode" json:"x_h2o_cathode"` // X_W_IV
	DHydrogenH2O float64 `toml:"d_h2_h2o" json:"d_h2_h2o"`           // D_HW, m2/s
	DOxygenH2O   float64 `toml:"d_o2_h2o" json:"d_o2_h2o"`           // D_OW, m2/s
	MembraneEW   float64 `toml:"membrane_ew" json:"membrane_ew"`     // MW_N, kg/mol
	MembraneRho  float64 `toml:"membrane_rho" json:"membrane_rho"`   // rhod_N, kg/m3
	DWaterRef    float64 `toml:"d_water_ref" json:"d_water_ref"`     // D_WN at TRef, m2/s
	DWaterAct    float64 `toml:"d_water_act" json:"d_water_act"`     // K
	TRef         float64 `toml:"t_ref" json:"t_ref"`                 // K
	Epsilon      float64 `toml:"epsilon" json:"epsilon"`             // sweep end margin
}

// DefaultConstants returns the standard coefficient set.
func DefaultConstants() Constants {
	return Constants{
		Faraday:      96485,
		GasConstant:  8.314,
		Erev:         1.23,
		ILeak:        0,
		Cdrag:        2.5,
		Steps:        100,
		I0Ref:        1,
		Alpha:        2.0,
		SatPressure:  0.307,
		XHydrogenIn:  0.9,
		XOxygenIn:    0.19,
		XWaterIn:     0.1,
		DHydrogenH2O: 1.49e-5,
		DOxygenH2O:   2.95e-6,
		MembraneEW:   1.0,
		MembraneRho:  1970,
		DWaterRef:    1.3113e-10,
		DWaterAct:    2416,
		TRef:         303,
		Epsilon:      1e-6,
	}
}

// Validate rejects coefficient sets the model cannot divide by or take
// logarithms of.
func (c Constants) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"faraday", c.Faraday},
		{"gas_constant", c.GasConstant},
		{"c_drag", c.Cdrag},
		{"i0_ref", c.I0Ref},
		{"alpha", c.Alpha},
		{"sat_pressure_atm", c.SatPressure},
		{"d_h2_h2o", c.DHydrogenH2O},
		{"d_o2_h2o", c.DOxygenH2O},
		{"membrane_ew", c.MembraneEW},
		{"membrane_rho", c.MembraneRho},
		{"d_water_ref", c.DWaterRef},
		{"t_ref", c.TRef},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return &ParameterError{Name: p.name, Value: p.v}
		}
	}
	fractions := []struct {
		name string
		v    float64
	}{
		{"x_h2_anode", c.XHydrogenIn},
		{"x_o2_cathode", c.XOxygenIn},
		{"x_h2o_cathode", c.XWaterIn},
	}
	for _, p := range fractions {
		if !(p.v >= 0 && p.v <= 1) {
			return &ParameterError{Name: p.name, Value: p.v}
		}
	}
	if c.XOxygenIn == 0 {
		return &ParameterError{Name: "x_o2_cathode", Value: c.XOxygenIn}
	}
	if c.Steps < 1 {
		return &ParameterError{Name: "steps", Value: float64(c.Steps)}
	}
	if !(c.Epsilon >= 0 && c.Epsilon < 1) {
		return &ParameterError{Name: "epsilon", Value: c.Epsilon}
	}
	if !(c.ILeak >= 0) || math.IsInf(c.ILeak, 0) {
		return &ParameterError{Name: "i_leak", Value: c.ILeak}
	}
	if math.IsNaN(c.Erev) || math.IsInf(c.Erev, 0) {
		return &ParameterError{Name: "erev", Value: c.Erev}
	}
	if math.IsNaN(c.DWaterAct) || math.IsInf(c.DWaterAct, 0) {
		return &ParameterError{Name: "d_water_act", Value: c.DWaterAct}
	}
	return nil
}

// LoadConstants reads a TOML file on top of the defaults. Keys missing from
// the file keep their default value.
func LoadConstants(path string) (Constants, error) {
	c := DefaultConstants()
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, fmt.Errorf("fuelcell: decoding constants %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("fuelcell: constants %s: %w", path, err)
	}
	return c, nil
}
