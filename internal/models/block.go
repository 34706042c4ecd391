package models

import (
	"fmt"
	"time"
)

// BlockReason classifies why a recipient blocked a sender identity.
type BlockReason string

const (
	BlockReasonSpam               BlockReason = "spam"
	BlockReasonHarassment         BlockReason = "harassment"
	BlockReasonInappropriate      BlockReason = "inappropriate_content"
	BlockReasonSuspiciousActivity BlockReason = "suspicious_activity"
	BlockReasonOther              BlockReason = "other"
)

// ParseBlockReason validates a client-supplied reason. Empty defaults to
// "other"; anything outside the closed set is an error.
func ParseBlockReason(s string) (BlockReason, error) {
	switch BlockReason(s) {
	case BlockReasonSpam, BlockReasonHarassment, BlockReasonInappropriate,
		BlockReasonSuspiciousActivity, BlockReasonOther:
		return BlockReason(s), nil
	case "":
		return BlockReasonOther, nil
	}
	return "", fmt.Errorf("invalid block reason: %q", s)
}

// BlockEntry is one row of a recipient's block registry. At most one entry
// exists per (UserID, BlockedIdentity) pair.
type BlockEntry struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	BlockedIdentity string      `json:"blocked_identity"`
	Reason          BlockReason `json:"reason"`
	BlockedLabel    string      `json:"blocked_label,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}
