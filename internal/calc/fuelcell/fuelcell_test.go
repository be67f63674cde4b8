package fuelcell

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// reference operating point
func refParams(t *testing.T) ParameterSet {
	t.Helper()
	p, err := NewParameterSet(1, 343, 450, 125)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func relDifferent(a, b, tol float64) bool {
	return math.Abs(a-b) > tol*math.Max(math.Abs(a), math.Abs(b))
}

func TestNewParameterSetInvalid(t *testing.T) {
	cases := []struct {
		name       string
		p, T, e, m float64
		field      string
	}{
		{"zero pressure", 0, 343, 450, 125, "pressure_atm"},
		{"negative pressure", -1, 343, 450, 125, "pressure_atm"},
		{"zero temperature", 1, 0, 450, 125, "temperature_k"},
		{"negative temperature", 1, -10, 450, 125, "temperature_k"},
		{"zero electrode", 1, 343, 0, 125, "electrode_thickness_um"},
		{"negative membrane", 1, 343, 450, -5, "membrane_thickness_um"},
		{"nan temperature", 1, math.NaN(), 450, 125, "temperature_k"},
		{"inf pressure", math.Inf(1), 343, 450, 125, "pressure_atm"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewParameterSet(c.p, c.T, c.e, c.m)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err = %v, want ErrInvalidParameter", err)
			}
			var pe *ParameterError
			if !errors.As(err, &pe) || pe.Name != c.field {
				t.Errorf("error %v does not name %s", err, c.field)
			}
			if Kind(err) != KindInvalidParameter {
				t.Errorf("kind = %q", Kind(err))
			}
		})
	}
}

func TestDeriveReference(t *testing.T) {
	d, err := Derive(refParams(t), DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	const tol = 1e-9
	if relDifferent(d.LimitingCurrent, 17080.29502, tol) {
		t.Errorf("iL = %.10g", d.LimitingCurrent)
	}
	if relDifferent(d.Prod, 9304.265973, tol) {
		t.Errorf("PROD = %.10g", d.Prod)
	}
	if relDifferent(d.DWater, 3.323055174e-10, tol) {
		t.Errorf("D_WN = %.10g", d.DWater)
	}
	if d.PressureAnode != 101325 || d.PressureCathode != 101325 {
		t.Errorf("pressures %g, %g", d.PressureAnode, d.PressureCathode)
	}
	if relDifferent(d.ThicknessCathode, 450e-6, tol) || relDifferent(d.ThicknessMembrane, 125e-6, tol) {
		t.Errorf("thicknesses %g, %g", d.ThicknessCathode, d.ThicknessMembrane)
	}
	if relDifferent(d.XWaterSat, 0.307, tol) {
		t.Errorf("X_W_III = %g", d.XWaterSat)
	}
}

func TestDeriveMoleFractions(t *testing.T) {
	for _, p := range []float64{0.5, 1, 2, 3, 5} {
		for _, T := range []float64{300, 343, 363} {
			ps, err := NewParameterSet(p, T, 300, 100)
			if err != nil {
				t.Fatal(err)
			}
			d, err := Derive(ps, DefaultConstants())
			if err != nil {
				t.Fatalf("p=%g T=%g: %v", p, T, err)
			}
			if !(d.LimitingCurrent > 0) {
				t.Errorf("p=%g T=%g: iL = %g", p, T, d.LimitingCurrent)
			}
			for k, x := range d.MoleFractions() {
				if x < 0 || x > 1 {
					t.Errorf("p=%g T=%g: %s = %g", p, T, k, x)
				}
			}
			c := d.Constants
			if s := c.XOxygenIn + c.XWaterIn + d.XNitrogenCathode; math.Abs(s-1) > 1e-12 {
				t.Errorf("cathode fractions sum to %g", s)
			}
			if s := c.XHydrogenIn + d.XWaterAnode; math.Abs(s-1) > 1e-12 {
				t.Errorf("anode fractions sum to %g", s)
			}
		}
	}
}

func TestDeriveThicknessScaling(t *testing.T) {
	c := DefaultConstants()
	prev := math.Inf(1)
	for _, e := range []float64{100, 200, 400, 800, 1600} {
		ps, _ := NewParameterSet(1, 343, e, 125)
		d, err := Derive(ps, c)
		if err != nil {
			t.Fatal(err)
		}
		if !(d.LimitingCurrent < prev) {
			t.Errorf("electrode %g µm: iL %g did not decrease from %g", e, d.LimitingCurrent, prev)
		}
		prev = d.LimitingCurrent
	}
}

func TestDeriveUnvalidatedSet(t *testing.T) {
	cases := []struct {
		p    ParameterSet
		name string
	}{
		{ParameterSet{}, "pressure_atm"},
		{ParameterSet{pressure: 1}, "temperature_k"},
		{ParameterSet{pressure: 1, temperature: 343}, "electrode_thickness_um"},
		{ParameterSet{pressure: 1, temperature: 343, electrode: 450}, "membrane_thickness_um"},
	}
	for _, c := range cases {
		_, err := Derive(c.p, DefaultConstants())
		var pe *ParameterError
		if !errors.As(err, &pe) || pe.Name != c.name {
			t.Errorf("%+v: err = %v, want parameter error on %s", c.p, err, c.name)
		}
	}
}

func TestDeriveDomain(t *testing.T) {
	// saturation fraction exceeds one below 0.307 atm
	ps, _ := NewParameterSet(0.2, 343, 450, 125)
	_, err := Derive(ps, DefaultConstants())
	var de *DomainError
	if !errors.As(err, &de) || de.Quantity != "x_h2o_sat" {
		t.Fatalf("err = %v, want x_h2o_sat domain error", err)
	}
	if Kind(err) != KindModelDomain {
		t.Errorf("kind = %q", Kind(err))
	}

	if _, err := Derive(ParameterSet{}, DefaultConstants()); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero parameter set: err = %v", err)
	}

	c := DefaultConstants()
	c.Faraday = 0
	if _, err := Derive(refParams(t), c); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero faraday: err = %v", err)
	}
}

func TestSolveFlood(t *testing.T) {
	cases := []struct {
		p, T, e, m float64
		root       float64
		tols       []float64
	}{
		{1, 343, 450, 125, 5995.492498629393, []float64{1e-6, 1e-8, 1e-10}},
		{2, 353, 300, 50, 4465.135390952803, []float64{1e-6, 1e-8, 1e-10}},
		{1, 298, 450, 125, 6819.059010693435, []float64{1e-4, 1e-6}},
		{3, 343, 450, 125, 159.10073121591765, []float64{1e-6, 1e-8, 1e-10}},
		{0.5, 343, 450, 125, 8508.617231567114, []float64{1e-6, 1e-8, 1e-10}},
	}
	for _, c := range cases {
		ps, _ := NewParameterSet(c.p, c.T, c.e, c.m)
		d, err := Derive(ps, DefaultConstants())
		if err != nil {
			t.Fatal(err)
		}
		for _, tol := range c.tols {
			fp, err := SolveFlood(d, SolverOptions{Tolerance: tol})
			if err != nil {
				t.Fatalf("p=%g T=%g tol=%g: %v", c.p, c.T, tol, err)
			}
			if r := FloodEquation(d, fp.Root); math.Abs(r) >= tol {
				t.Errorf("p=%g T=%g: |f(x*)| = %g >= %g", c.p, c.T, math.Abs(r), tol)
			}
			if relDifferent(fp.Root, c.root, 1e-6) {
				t.Errorf("p=%g T=%g: root = %.12g, want %.12g", c.p, c.T, fp.Root, c.root)
			}
			if fp.Current != FloodScale*fp.Root {
				t.Errorf("flood current %g is not %g × %g", fp.Current, FloodScale, fp.Root)
			}
		}
	}
}

func TestSolveFloodColdCell(t *testing.T) {
	// near freezing the swelling exponential leaves |f| far above 1e-6
	// at every representable x
	ps, _ := NewParameterSet(1, 273, 450, 125)
	d, err := Derive(ps, DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	_, err = SolveFlood(d, SolverOptions{})
	var re *RootError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RootError", err)
	}
	if math.Abs(re.Residual) < 1e-6 {
		t.Errorf("residual %g below tolerance yet reported as failure", re.Residual)
	}

	fp, err := SolveFlood(d, SolverOptions{Tolerance: 1})
	if err != nil {
		t.Fatal(err)
	}
	if relDifferent(fp.Root, 7443.513690935282, 1e-6) {
		t.Errorf("root = %.12g", fp.Root)
	}
}

func TestSolveFloodNoRoot(t *testing.T) {
	// above ~3.07 atm the water vapour differential turns negative
	ps, _ := NewParameterSet(4, 343, 450, 125)
	d, err := Derive(ps, DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	_, err = SolveFlood(d, SolverOptions{})
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
	if Kind(err) != KindRootNotFound {
		t.Errorf("kind = %q", Kind(err))
	}
}

func TestSolveFloodIterationCap(t *testing.T) {
	d, _ := Derive(refParams(t), DefaultConstants())
	_, err := SolveFlood(d, SolverOptions{Tolerance: 1e-30, MaxIter: 3})
	var re *RootError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *RootError", err)
	}
	if re.Iterate <= 0 || re.Iterate >= d.Prod {
		t.Errorf("last iterate %g outside (0, %g)", re.Iterate, d.Prod)
	}
	if re.Residual == 0 || math.IsNaN(re.Residual) {
		t.Errorf("residual %g", re.Residual)
	}
}

func TestGenerateCurve(t *testing.T) {
	c := DefaultConstants()
	p := refParams(t)
	curve, err := GenerateCurve(p, c)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := Derive(p, c)

	if len(curve) != c.Steps+1 {
		t.Fatalf("len = %d, want %d", len(curve), c.Steps+1)
	}
	if curve[0].CurrentDensity != c.ILeak {
		t.Errorf("first current density %g, want iLeak %g", curve[0].CurrentDensity, c.ILeak)
	}
	if curve[0].Voltage != 1.23 {
		t.Errorf("open circuit voltage %g, want 1.23", curve[0].Voltage)
	}
	for j := 1; j < len(curve); j++ {
		if !(curve[j].CurrentDensity > curve[j-1].CurrentDensity) {
			t.Errorf("current density not increasing at %d", j)
		}
		if !(curve[j].Voltage < curve[j-1].Voltage) {
			t.Errorf("voltage not decreasing at %d: %g -> %g", j, curve[j-1].Voltage, curve[j].Voltage)
		}
	}
	if last := curve[len(curve)-1].CurrentDensity; !(last < d.LimitingCurrent) {
		t.Errorf("sweep reached iL: %g >= %g", last, d.LimitingCurrent)
	}

	want := map[int]float64{1: 1.1293430459925653, 50: 1.0614365856931767, 100: 0.8572715758952646}
	for j, v := range want {
		if relDifferent(curve[j].Voltage, v, 1e-9) {
			t.Errorf("V[%d] = %.12g, want %.12g", j, curve[j].Voltage, v)
		}
	}
	for _, pt := range curve {
		if pt.PowerDensity != pt.CurrentDensity*pt.Voltage {
			t.Errorf("power density mismatch at i=%g", pt.CurrentDensity)
		}
	}
}

func TestGenerateCurveDeterministic(t *testing.T) {
	a, err := GenerateCurve(refParams(t), DefaultConstants())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateCurve(refParams(t), DefaultConstants())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestActivationThreshold(t *testing.T) {
	// a large exchange current reference keeps the start of the curve flat
	c := DefaultConstants()
	c.I0Ref = 1000
	curve, err := GenerateCurve(refParams(t), c)
	if err != nil {
		t.Fatal(err)
	}
	flat := 0
	for _, pt := range curve {
		if pt.CurrentDensity/c.I0Ref <= 1 {
			flat++
			if pt.Voltage != c.Erev || pt.Overpotential != 0 {
				t.Errorf("i=%g below threshold: V=%g", pt.CurrentDensity, pt.Voltage)
			}
		}
	}
	if flat < 2 {
		t.Errorf("only %d points below the activation threshold", flat)
	}
}

func TestSweepDomainError(t *testing.T) {
	c := DefaultConstants()
	c.ILeak = 20000 // beyond iL for the reference point
	_, err := GenerateCurve(refParams(t), c)
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DomainError", err)
	}
	if de.Step != 0 || de.Value > 0 {
		t.Errorf("domain error %+v", de)
	}
}

func TestCalculate(t *testing.T) {
	res, err := Calculate(Input{PressureAtm: 1, TemperatureK: 343, ElectrodeThicknessUm: 450, MembraneThicknessUm: 125})
	if err != nil {
		t.Fatal(err)
	}
	if res.Curve[0].CurrentDensity != 0 || res.Curve[0].Voltage != 1.23 {
		t.Errorf("curve starts at (%g, %g)", res.Curve[0].CurrentDensity, res.Curve[0].Voltage)
	}
	if relDifferent(res.FloodCurrent, 59954.92498629393, 1e-6) {
		t.Errorf("flood current %g", res.FloodCurrent)
	}
	if res.PeakPower != res.Curve[98] {
		t.Errorf("peak power %+v, want point 98 %+v", res.PeakPower, res.Curve[98])
	}
	if res.LimitingCurrent != res.Derived.LimitingCurrent {
		t.Errorf("iL mismatch")
	}
}

func TestCalculateErrors(t *testing.T) {
	cases := []struct {
		in   Input
		kind string
	}{
		{Input{PressureAtm: 1, TemperatureK: 0, ElectrodeThicknessUm: 450, MembraneThicknessUm: 125}, KindInvalidParameter},
		{Input{PressureAtm: 0, TemperatureK: 343, ElectrodeThicknessUm: 450, MembraneThicknessUm: 125}, KindInvalidParameter},
		{Input{PressureAtm: 0.1, TemperatureK: 343, ElectrodeThicknessUm: 450, MembraneThicknessUm: 125}, KindModelDomain},
		{Input{PressureAtm: 4, TemperatureK: 343, ElectrodeThicknessUm: 450, MembraneThicknessUm: 125}, KindRootNotFound},
	}
	for _, c := range cases {
		_, err := Calculate(c.in)
		if err == nil {
			t.Errorf("%+v: no error", c.in)
			continue
		}
		if Kind(err) != c.kind {
			t.Errorf("%+v: kind %q, want %q (%v)", c.in, Kind(err), c.kind, err)
		}
	}
}

func TestLoadConstants(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constants.toml")
	if err := os.WriteFile(path, []byte("steps = 20\nerev = 1.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConstants(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Steps != 20 || c.Erev != 1.2 || c.Faraday != 96485 {
		t.Errorf("constants %+v", c)
	}
	curve, err := GenerateCurve(refParams(t), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(curve) != 21 {
		t.Errorf("len = %d, want 21", len(curve))
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("steps = 0\n"), 0o644)
	if _, err := LoadConstants(bad); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}
