package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/internal/services"
)

// maxReportDetailsLength caps optional report details, counted in characters
// like message content, so multibyte text is not penalized.
const maxReportDetailsLength = 500

func reportDetailsTooLong(details string) bool {
	return utf8.RuneCountInString(details) > maxReportDetailsLength
}

type SubmitReportRequest struct {
	MessageID string `json:"message_id"`
	Reason    string `json:"reason"`
	Details   string `json:"details,omitempty"`
}

type SubmitReportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// SenderIPHash lets the client offer one-click blocking of the reported
	// sender without re-deriving the identity.
	SenderIPHash string         `json:"sender_ip_hash,omitempty"`
	Report       *models.Report `json:"report,omitempty"`
}

// SubmitReport files a complaint against a message in the caller's inbox.
func SubmitReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MessageID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "message_id is required",
		})
		return
	}

	reason, err := models.ParseReportReason(req.Reason)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "Invalid report reason",
		})
		return
	}

	if reportDetailsTooLong(req.Details) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "Details must be at most 500 characters",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report, senderIdentity, err := services.SubmitReport(ctx, req.MessageID, userID, reason, req.Details)
	if err == services.ErrNotFound {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "Message not found",
		})
		return
	}
	if err == services.ErrForbidden {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "You can only report messages sent to you",
		})
		return
	}
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(SubmitReportResponse{
			Success: false,
			Message: "Failed to submit report",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(SubmitReportResponse{
		Success:      true,
		Message:      "Report submitted",
		SenderIPHash: senderIdentity,
		Report:       report,
	})
}
