package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
)

// Postgres error codes the limiter cares about.
const (
	pgSerializationFailure = "40001"
	pgUniqueViolation      = "23505"
)

// How many times the count-and-insert transaction is retried when Postgres
// aborts it with a serialization failure under concurrent submissions.
const rateLimitTxRetries = 3

// retryAfter returns how long the sender must wait before the oldest message
// inside the window ages out. Zero when the window has already elapsed.
func retryAfter(oldestInWindow, now time.Time, window time.Duration) time.Duration {
	d := oldestInWindow.Add(window).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// checkAndInsertMessage counts the sender's accepted messages to this
// recipient inside the trailing window and, if under the ceiling, inserts the
// new message — all inside one serializable transaction. That makes the
// count-then-insert sequence atomic: two concurrent submissions cannot both
// observe room under the ceiling and both commit.
//
// Returns (message, 0, nil) on accept and (nil, retryAfter, nil) on a
// rate-limit reject. The limiter keeps no counters of its own; the messages
// table is the only source of truth.
func checkAndInsertMessage(ctx context.Context, recipientID, identity, content string, now time.Time, p config.AbusePolicy) (*models.Message, time.Duration, error) {
	var lastErr error
	for attempt := 0; attempt < rateLimitTxRetries; attempt++ {
		msg, wait, err := tryCheckAndInsert(ctx, recipientID, identity, content, now, p)
		if err == nil {
			return msg, wait, nil
		}
		if !isSerializationFailure(err) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func tryCheckAndInsert(ctx context.Context, recipientID, identity, content string, now time.Time, p config.AbusePolicy) (*models.Message, time.Duration, error) {
	tx, err := database.PostgresDB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	windowStart := now.Add(-p.RateLimitWindow)

	var count int
	var oldest sql.NullTime
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(created_at) FROM messages
		WHERE recipient_id = $1 AND sender_identity = $2 AND created_at > $3
	`, recipientID, identity, windowStart).Scan(&count, &oldest)
	if err != nil {
		return nil, 0, err
	}

	if count >= p.RateLimitMax {
		wait := p.RateLimitWindow
		if oldest.Valid {
			wait = retryAfter(oldest.Time, now, p.RateLimitWindow)
		}
		// Reject without writing anything; the rollback is the whole story.
		return nil, wait, nil
	}

	msg := &models.Message{
		RecipientID:    recipientID,
		SenderIdentity: identity,
		Content:        content,
		CreatedAt:      now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO messages (recipient_id, sender_identity, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, recipientID, identity, content, now).Scan(&msg.ID)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return msg, 0, nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgSerializationFailure
	}
	return false
}
