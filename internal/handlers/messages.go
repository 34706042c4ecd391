package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/services"
	"github.com/whisperwall/whisperwall-backend/pkg/clientip"
)

// genericDeliveryFailure is returned for blocked senders and store failures
// alike, so a sender cannot probe whether a recipient has blocked them.
const genericDeliveryFailure = "Unable to deliver message"

type SubmitMessageRequest struct {
	RecipientUsername string `json:"recipient_username"`
	Content           string `json:"content"`
}

type SubmitMessageResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

type GetInboxResponse struct {
	Success  bool                     `json:"success"`
	Message  string                   `json:"message,omitempty"`
	Messages []map[string]interface{} `json:"messages"`
	HasMore  bool                     `json:"has_more"`
	Total    int64                    `json:"total"`
	Unread   int64                    `json:"unread"`
}

// SubmitMessage accepts an anonymous message for a recipient's profile. The
// sender is unauthenticated; the only handle kept is the salted hash of the
// sender's address, derived inside the ingestion pipeline.
func SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := ingestPipeline.Submit(ctx, req.RecipientUsername, req.Content, clientip.FromRequest(r))
	if err != nil {
		// Store unreachable: fail closed, reveal nothing.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: false,
			Message: genericDeliveryFailure,
		})
		return
	}

	switch result.Status {
	case services.IngestAccepted:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: true,
			Message: "Message sent",
		})

	case services.IngestRejectedValidation:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: false,
			Message: validationMessage(result.Reason),
		})

	case services.IngestRejectedBlocked:
		// Same body as a store failure; only the status differs.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: false,
			Message: genericDeliveryFailure,
		})

	case services.IngestRejectedRateLimited:
		retryAfter := int(result.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success:    false,
			Message:    "You are sending messages too quickly. Please wait before trying again.",
			RetryAfter: retryAfter,
		})

	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(SubmitMessageResponse{
			Success: false,
			Message: genericDeliveryFailure,
		})
	}
}

func validationMessage(reason string) string {
	switch reason {
	case services.ReasonEmptyContent:
		return "Message is required"
	case services.ReasonContentTooLong:
		return "Message must be at most 500 characters"
	case services.ReasonUnknownRecipient:
		return "Recipient not found"
	}
	return "Invalid message"
}

// GetInbox returns the authenticated recipient's messages, newest first,
// each carrying the advisory suspicion verdict for its sender.
func GetInbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(GetInboxResponse{
			Success:  false,
			Message:  "Authentication required",
			Messages: []map[string]interface{}{},
		})
		return
	}

	// Parse limit (default: 20)
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	// Parse skip (default: 0)
	skip := 0
	if skipStr := r.URL.Query().Get("skip"); skipStr != "" {
		if parsed, err := strconv.Atoi(skipStr); err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	inbox, total, err := services.ListInbox(ctx, userID, limit, skip, cfg.Abuse)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(GetInboxResponse{
			Success:  false,
			Message:  "Failed to fetch messages",
			Messages: []map[string]interface{}{},
		})
		return
	}

	unread, err := services.UnreadCount(ctx, userID)
	if err != nil {
		unread = 0
	}

	messageMaps := make([]map[string]interface{}, 0, len(inbox))
	for _, m := range inbox {
		entry := map[string]interface{}{
			"id":             m.ID,
			"sender_ip_hash": m.SenderIdentity,
			"content":        m.Content,
			"created_at":     m.CreatedAt,
			"is_read":        m.IsRead,
			"is_suspicious":  m.Suspicion.IsSuspicious,
			"severity":       m.Suspicion.Severity,
			"suggest_block":  m.Suspicion.SuggestBlock,
		}
		if m.Suspicion.Reason != "" {
			entry["suspicion_reason"] = m.Suspicion.Reason
		}
		messageMaps = append(messageMaps, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetInboxResponse{
		Success:  true,
		Messages: messageMaps,
		HasMore:  int64(skip+limit) < total,
		Total:    total,
		Unread:   unread,
	})
}

type MessageActionRequest struct {
	MessageID string `json:"message_id"`
}

type MessageActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MarkMessageRead marks one of the caller's messages as read.
func MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req MessageActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MessageID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: "message_id is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := services.MarkMessageRead(ctx, userID, req.MessageID); err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to update message"
		if err == services.ErrNotFound {
			status = http.StatusNotFound
			msg = "Message not found"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: msg,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MessageActionResponse{
		Success: true,
		Message: "Message marked as read",
	})
}

// DeleteMessage removes one of the caller's messages.
func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req MessageActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MessageID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: "message_id is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := services.DeleteMessage(ctx, userID, req.MessageID); err != nil {
		status := http.StatusInternalServerError
		msg := "Failed to delete message"
		if err == services.ErrNotFound {
			status = http.StatusNotFound
			msg = "Message not found"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(MessageActionResponse{
			Success: false,
			Message: msg,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MessageActionResponse{
		Success: true,
		Message: "Message deleted",
	})
}
