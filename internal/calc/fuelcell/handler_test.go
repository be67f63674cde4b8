package fuelcell

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerCalc(t *testing.T) {
	h := &Handler{}
	body := `{"pressure_atm":1,"temperature_k":343,"electrode_thickness_um":450,"membrane_thickness_um":125}`
	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res Result
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if len(res.Curve) != 101 {
		t.Errorf("curve has %d points", len(res.Curve))
	}
	if res.FloodCurrent <= 0 {
		t.Errorf("flood current %g", res.FloodCurrent)
	}
}

func TestHandlerErrors(t *testing.T) {
	cases := []struct {
		body   string
		status int
		kind   string
	}{
		{`{"pressure_atm":1,"temperature_k":-5,"electrode_thickness_um":450,"membrane_thickness_um":125}`, http.StatusBadRequest, KindInvalidParameter},
		{`{"pressure_atm":4,"temperature_k":343,"electrode_thickness_um":450,"membrane_thickness_um":125}`, http.StatusUnprocessableEntity, KindRootNotFound},
		{`{"pressure_atm":0.1,"temperature_k":343,"electrode_thickness_um":450,"membrane_thickness_um":125}`, http.StatusUnprocessableEntity, KindModelDomain},
	}
	h := &Handler{}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.Calc(rec, httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader(c.body)))
		if rec.Code != c.status {
			t.Errorf("%s: status %d, want %d", c.kind, rec.Code, c.status)
		}
		var eb ErrorBody
		if err := json.NewDecoder(rec.Body).Decode(&eb); err != nil {
			t.Fatalf("%s: %v", c.kind, err)
		}
		if eb.Error != c.kind {
			t.Errorf("error kind %q, want %q", eb.Error, c.kind)
		}
	}

	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/calc", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status %d", rec.Code)
	}
}

func TestDescribe(t *testing.T) {
	eb := Describe(&ParameterError{Name: "temperature_k", Value: -5})
	if eb.Name != "temperature_k" || eb.Value == nil || *eb.Value != -5 {
		t.Errorf("parameter envelope %+v", eb)
	}
	eb = Describe(&RootError{Iterate: 3, Residual: 0.5, Iterations: 7, Err: ErrRootNotFound})
	if eb.Iterate == nil || *eb.Iterate != 3 || eb.Iterations != 7 {
		t.Errorf("root envelope %+v", eb)
	}
	eb = Describe(&DomainError{Quantity: "oxygen_partial_pressure_atm", Value: -0.1, Step: 4})
	if eb.Step == nil || *eb.Step != 4 || eb.Error != KindModelDomain {
		t.Errorf("domain envelope %+v", eb)
	}
}
