package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/internal/services"
	"github.com/whisperwall/whisperwall-backend/pkg/identity"
)

type AddBlockRequest struct {
	IPHash string `json:"ip_hash"`
	Reason string `json:"reason,omitempty"`
	Label  string `json:"label,omitempty"`
}

type AddBlockResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Block   *models.BlockEntry `json:"block,omitempty"`
}

type ListBlocksResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Blocks  []models.BlockEntry `json:"blocks"`
	Count   int                 `json:"count"`
}

type RemoveBlockRequest struct {
	BlockID string `json:"block_id"`
}

type RemoveBlockResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AddBlock adds a sender identity to the caller's block registry.
func AddBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req AddBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if !identity.IsValid(req.IPHash) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "ip_hash is required",
		})
		return
	}

	reason, err := models.ParseBlockReason(req.Reason)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "Invalid block reason",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	block, err := services.AddBlock(ctx, userID, req.IPHash, reason, req.Label)
	if err == services.ErrAlreadyBlocked {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "This sender is already blocked",
		})
		return
	}
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(AddBlockResponse{
			Success: false,
			Message: "Failed to block sender",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AddBlockResponse{
		Success: true,
		Message: "Sender blocked",
		Block:   block,
	})
}

// ListBlocks returns the caller's block entries, most recent first.
func ListBlocks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ListBlocksResponse{
			Success: false,
			Message: "Authentication required",
			Blocks:  []models.BlockEntry{},
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	blocks, err := services.ListBlocks(ctx, userID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ListBlocksResponse{
			Success: false,
			Message: "Failed to fetch blocks",
			Blocks:  []models.BlockEntry{},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListBlocksResponse{
		Success: true,
		Blocks:  blocks,
		Count:   len(blocks),
	})
}

// RemoveBlock removes one of the caller's block entries. Removing an id that
// is not the caller's is a no-op and still reports success: the ownership
// filter in the delete is the only authority, and the response does not
// reveal which ids exist.
func RemoveBlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(RemoveBlockResponse{
			Success: false,
			Message: "Authentication required",
		})
		return
	}

	var req RemoveBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BlockID == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(RemoveBlockResponse{
			Success: false,
			Message: "block_id is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := services.RemoveBlock(ctx, userID, req.BlockID)
	if err != nil && err != services.ErrNotFound {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(RemoveBlockResponse{
			Success: false,
			Message: "Failed to remove block",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RemoveBlockResponse{
		Success: true,
		Message: "Block removed",
	})
}
