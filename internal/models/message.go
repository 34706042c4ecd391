package models

import (
	"time"
)

// Message is an anonymous message delivered to a recipient's profile.
// SenderIdentity is the salted hash of the sender's address; the raw address
// is never stored.
type Message struct {
	ID             string    `json:"id"`
	RecipientID    string    `json:"recipient_id"`
	SenderIdentity string    `json:"sender_identity"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"is_read"`
}
