package fuelcell

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Model Calculator
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Model.Calculate(input)
	if err != nil {
		log.WithFields(log.Fields{
			"kind":        Kind(err),
			"pressure":    input.PressureAtm,
			"temperature": input.TemperatureK,
		}).Warn("fuelcell: calculation failed")
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// ErrorBody is the JSON error envelope of the calculation endpoints.
type ErrorBody struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Name       string   `json:"name,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Iterate    *float64 `json:"iterate,omitempty"`
	Residual   *float64 `json:"residual,omitempty"`
	Iterations int      `json:"iterations,omitempty"`
	Step       *int     `json:"step,omitempty"`
}

// Describe builds the error envelope for err.
func Describe(err error) ErrorBody {
	body := ErrorBody{Error: Kind(err), Message: err.Error()}
	if body.Error == "" {
		body.Error = "CalculationError"
	}
	var pe *ParameterError
	var re *RootError
	var de *DomainError
	switch {
	case errors.As(err, &pe):
		body.Name = pe.Name
		body.Value = finiteOrNil(pe.Value)
	case errors.As(err, &re):
		body.Iterate = finiteOrNil(re.Iterate)
		body.Residual = finiteOrNil(re.Residual)
		body.Iterations = re.Iterations
	case errors.As(err, &de):
		body.Name = de.Quantity
		body.Value = finiteOrNil(de.Value)
		if de.Step >= 0 {
			step := de.Step
			body.Step = &step
		}
	}
	return body
}

// StatusFor maps an error class to an HTTP status.
func StatusFor(err error) int {
	switch Kind(err) {
	case KindInvalidParameter:
		return http.StatusBadRequest
	case KindRootNotFound, KindModelDomain:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// WriteError writes err as a JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(err))
	json.NewEncoder(w).Encode(Describe(err))
}

// encoding/json cannot represent NaN or Inf
func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
