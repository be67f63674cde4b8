package importer

import (
	"encoding/json"
	"net/http"

	batch "Polarcell/internal/calc/batch"
	fuelcell "Polarcell/internal/calc/fuelcell"
	log "github.com/sirupsen/logrus"
)

const MaxUploadSize = 10 << 20 // 10MB

type Handler struct {
	Runner batch.Runner
}

type ImportResult struct {
	Count     int          `json:"count"`
	Rows      []int        `json:"rows"`
	RowErrors []RowError   `json:"row_errors,omitempty"`
	Results   []batch.Item `json:"results"`
}

// Import evaluates every row of an uploaded workbook.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, bad, err := ReadInputs(file)
	if err != nil {
		log.WithError(err).Warn("importer: rejected workbook")
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	out := ImportResult{RowErrors: bad}
	if len(rows) > 0 {
		in := batch.Input{Items: make([]fuelcell.Input, len(rows))}
		for i, row := range rows {
			in.Items[i] = row.Input
			out.Rows = append(out.Rows, row.Row)
		}
		res, err := h.Runner.Calculate(r.Context(), in)
		if err != nil {
			http.Error(w, "Calculation error", http.StatusBadRequest)
			return
		}
		out.Count = res.Count
		out.Results = res.Results
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Export calculates one curve and returns it as an xlsx attachment.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input fuelcell.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Runner.Model.Calculate(input)
	if err != nil {
		fuelcell.WriteError(w, err)
		return
	}
	f, err := WriteWorkbook(res)
	if err != nil {
		log.WithError(err).Error("importer: building workbook")
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"polarization.xlsx\"")
	if err := f.Write(w); err != nil {
		log.WithError(err).Error("importer: writing workbook")
	}
}
