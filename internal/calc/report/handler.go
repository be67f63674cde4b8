package report

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	fuelcell "Polarcell/internal/calc/fuelcell"
	log "github.com/sirupsen/logrus"
)

type Input struct {
	Meta
	Params fuelcell.Input `json:"params"`
}

type Handler struct {
	Model fuelcell.Calculator
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Model.Calculate(input.Params)
	if err != nil {
		fuelcell.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := Write(&buf, input.Meta, res, time.Now()); err != nil {
		log.WithError(err).Error("report: rendering pdf")
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	w.Write(buf.Bytes())
}
