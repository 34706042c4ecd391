package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/internal/services"
)

type GetAbuseEventsResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Events  []models.AbuseEvent `json:"events"`
	Count   int                 `json:"count"`
}

// requireAdmin checks the shared admin token header. Admin access is
// operational tooling, not a user role.
func requireAdmin(r *http.Request) bool {
	if cfg == nil || cfg.AdminToken == "" {
		return false
	}
	token := r.Header.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) == 1
}

// GetAbuseEvents returns recent advisory abuse events (rejected submissions).
func GetAbuseEvents(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(GetAbuseEventsResponse{
			Success: false,
			Message: "Unauthorized",
			Events:  []models.AbuseEvent{},
		})
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	events, err := services.ListAbuseEvents(ctx, limit)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetAbuseEventsResponse{
			Success: false,
			Message: "Failed to fetch events",
			Events:  []models.AbuseEvent{},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetAbuseEventsResponse{
		Success: true,
		Events:  events,
		Count:   len(events),
	})
}
