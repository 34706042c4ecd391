package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/services"
)

type GetProfileResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Profile map[string]interface{} `json:"profile,omitempty"`
}

// GetProfile is the public profile lookup senders use before posting.
// Returns only what the profile page shows: the username and join date.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(GetProfileResponse{
			Success: false,
			Message: "username is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := services.GetUserByUsername(ctx, username)
	if err != nil || !user.IsActive {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(GetProfileResponse{
			Success: false,
			Message: "Profile not found",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetProfileResponse{
		Success: true,
		Profile: map[string]interface{}{
			"username":   user.Username,
			"created_at": user.CreatedAt,
		},
	})
}
