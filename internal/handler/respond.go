package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dreamxec/backend/internal/repository"
	"github.com/dreamxec/backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var quota *service.QuotaExceededError
	var prior *service.PriorIncompleteError

	switch {
	case errors.As(err, &quota):
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error":         "quota_exceeded",
			"message":       quota.Error(),
			"amount_needed": quota.AmountNeeded,
		})
	case errors.As(err, &prior):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          "prior_milestone_incomplete",
			"message":        prior.Error(),
			"prior_position": prior.PriorPosition,
		})
	case errors.Is(err, service.ErrQuotaRace):
		writeError(w, http.StatusConflict, "quota_race")
	case errors.Is(err, service.ErrInvalidDonor):
		writeError(w, http.StatusBadRequest, "invalid_donor")
	case errors.Is(err, service.ErrNotActivated):
		writeError(w, http.StatusConflict, "not_activated")
	case errors.Is(err, service.ErrAlreadyComplete):
		writeError(w, http.StatusConflict, "already_approved")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	default:
		slog.Error("handler: internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
