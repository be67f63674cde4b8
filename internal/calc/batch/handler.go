package batch

import (
	"encoding/json"
	"net/http"
)

// MaxItems bounds a single batch request.
const MaxItems = 1000

type Handler struct {
	Runner Runner
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Items) > MaxItems {
		http.Error(w, "Too many items", http.StatusRequestEntityTooLarge)
		return
	}
	res, err := h.Runner.Calculate(r.Context(), input)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
