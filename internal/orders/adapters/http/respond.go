package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dejobratic/shoporders/internal/orders/domain"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

// envelope is the body shape of every orders API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, envelope{Success: false, Error: message, Details: details})
}

// writeServiceError maps use case errors to status codes. Anything it does
// not recognize is logged and reported as a generic 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *domain.ValidationError
	var tErr *domain.TransitionError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, "validation failed", map[string]string{"items": err.Error()})
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found", nil)
	case errors.Is(err, ports.ErrConflict):
		writeError(w, http.StatusConflict, "order was modified concurrently, retry the request", nil)
	case errors.As(err, &tErr):
		writeError(w, http.StatusUnprocessableEntity, "status transition not allowed", map[string]string{
			"from": string(tErr.From),
			"to":   string(tErr.To),
		})
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

func validStatuses() []string {
	statuses := domain.Statuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
