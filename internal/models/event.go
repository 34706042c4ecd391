package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AbuseEventKind names the rejection that produced an abuse event.
type AbuseEventKind string

const (
	AbuseEventBlocked     AbuseEventKind = "blocked"
	AbuseEventRateLimited AbuseEventKind = "rate_limited"
	AbuseEventValidation  AbuseEventKind = "validation"
)

// AbuseEvent is an advisory record of a rejected submission, kept in MongoDB
// for admin visibility. Events are periodically cleaned up; nothing in the
// accept/reject decision path reads them.
type AbuseEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	RecipientID    string `bson:"recipient_id,omitempty" json:"recipient_id,omitempty"`
	SenderIdentity string `bson:"sender_identity,omitempty" json:"sender_identity,omitempty"`

	Kind   AbuseEventKind `bson:"kind" json:"kind"`
	Detail string         `bson:"detail,omitempty" json:"detail,omitempty"`
}
