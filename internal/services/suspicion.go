package services

import (
	"context"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/database"
)

// Severity tiers for the suspicious activity detector.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Suspicion reason strings are product copy surfaced verbatim in the inbox.
const (
	reasonManyMessages  = "multiple messages in short time period"
	reasonRapidFlooding = "rapid message flooding detected"
	reasonHighFrequency = "high message frequency"
)

// SuspicionVerdict is the advisory classification of one sender's recent
// history toward one recipient. It is derived on read and never persisted.
type SuspicionVerdict struct {
	IsSuspicious bool     `json:"is_suspicious"`
	Severity     Severity `json:"severity"`
	Reason       string   `json:"reason,omitempty"`
	SuggestBlock bool     `json:"suggest_block"`
}

// Classify evaluates a sender's message timestamps against the suspicion
// tiers, high to low, first match wins:
//
//  1. more than SuspicionHighCount in the trailing SuspicionWindow → high, suggest block
//  2. more than BurstCount in the trailing BurstWindow → high, suggest block
//  3. MediumMinCount..SuspicionHighCount in the trailing SuspicionWindow → medium
//  4. otherwise low, not suspicious
//
// Pure function over the snapshot: it blocks nothing and mutates nothing —
// the hard rate limiter is a separate mechanism.
func Classify(history []time.Time, now time.Time, p config.AbusePolicy) SuspicionVerdict {
	hourly := 0
	burst := 0
	for _, ts := range history {
		if ts.After(now.Add(-p.SuspicionWindow)) {
			hourly++
		}
		if ts.After(now.Add(-p.BurstWindow)) {
			burst++
		}
	}

	if hourly > p.SuspicionHighCount {
		return SuspicionVerdict{
			IsSuspicious: true,
			Severity:     SeverityHigh,
			Reason:       reasonManyMessages,
			SuggestBlock: true,
		}
	}

	if burst > p.BurstCount {
		return SuspicionVerdict{
			IsSuspicious: true,
			Severity:     SeverityHigh,
			Reason:       reasonRapidFlooding,
			SuggestBlock: true,
		}
	}

	if hourly >= p.MediumMinCount {
		return SuspicionVerdict{
			IsSuspicious: true,
			Severity:     SeverityMedium,
			Reason:       reasonHighFrequency,
			SuggestBlock: false,
		}
	}

	return SuspicionVerdict{Severity: SeverityLow}
}

// ClassifySender loads the sender's recent history for one recipient and
// classifies it. Advisory only: on any store error it degrades to a low
// verdict instead of failing the read (the inbox just shows no warning).
func ClassifySender(ctx context.Context, recipientID, identity string, now time.Time, p config.AbusePolicy) SuspicionVerdict {
	window := p.SuspicionWindow
	if p.BurstWindow > window {
		window = p.BurstWindow
	}

	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT created_at FROM messages
		WHERE recipient_id = $1 AND sender_identity = $2 AND created_at > $3
	`, recipientID, identity, now.Add(-window))
	if err != nil {
		return SuspicionVerdict{Severity: SeverityLow}
	}
	defer rows.Close()

	var history []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return SuspicionVerdict{Severity: SeverityLow}
		}
		history = append(history, ts)
	}
	if rows.Err() != nil {
		return SuspicionVerdict{Severity: SeverityLow}
	}

	return Classify(history, now, p)
}
