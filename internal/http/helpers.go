package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"jarfin/internal/core"
	"jarfin/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondFailure maps a failed operation to a status: store failures are
// upstream problems, everything else is the client's input.
func respondFailure(w http.ResponseWriter, err error) {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}

// monthParam reads the "month" query parameter (2006-01), defaulting to
// the current month.
func monthParam(r *http.Request) (core.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return core.CurrentMonth(), nil
	}
	return core.ParseMonth(raw)
}

// dateParam reads the optional "date" query parameter.
func dateParam(r *http.Request) (*core.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
