package handlers

import (
	"net/http"
	"strings"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/services"
)

// Package-level wiring set once from main. Handlers are plain functions, so
// the pipeline and config live here.
var (
	cfg            *config.Config
	ingestPipeline *services.Pipeline
)

// InitAbuseControl wires the handlers to configuration and builds the
// ingestion pipeline. Must be called before routes are served.
func InitAbuseControl(c *config.Config) {
	cfg = c
	ingestPipeline = services.NewPipeline(c)
}

// extractBearerToken pulls the token out of an "Authorization: Bearer x" header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAuth validates the session and returns the authenticated user's ID.
// Returns ("", false) if not authenticated.
func requireAuth(r *http.Request) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return "", false
	}
	return userID.String(), true
}
