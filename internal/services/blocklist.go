package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
)

// AddBlock inserts a block entry for (userID, blockedIdentity). The table's
// unique constraint is the authority on duplicates: a second add for the same
// pair — concurrent or not — returns ErrAlreadyBlocked and leaves one row.
func AddBlock(ctx context.Context, userID, blockedIdentity string, reason models.BlockReason, label string) (*models.BlockEntry, error) {
	entry := &models.BlockEntry{
		UserID:          userID,
		BlockedIdentity: blockedIdentity,
		Reason:          reason,
		BlockedLabel:    label,
	}

	err := database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO blocked_senders (user_id, blocked_identity, reason, blocked_label)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, userID, blockedIdentity, string(reason), label).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, mapBlockInsertError(err)
	}

	return entry, nil
}

// mapBlockInsertError turns the unique-constraint violation on
// (user_id, blocked_identity) into ErrAlreadyBlocked and passes every other
// error through unchanged.
func mapBlockInsertError(err error) error {
	if isUniqueViolation(err) {
		return ErrAlreadyBlocked
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}

// RemoveBlock deletes a block entry scoped to its owner. The user_id filter
// is what enforces ownership: a foreign or unknown id deletes nothing and
// returns ErrNotFound.
func RemoveBlock(ctx context.Context, userID, blockID string) error {
	res, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM blocked_senders WHERE id = $1 AND user_id = $2
	`, blockID, userID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBlocks returns the recipient's block entries, most recent first.
func ListBlocks(ctx context.Context, userID string) ([]models.BlockEntry, error) {
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, user_id, blocked_identity, reason, COALESCE(blocked_label, ''), created_at
		FROM blocked_senders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := []models.BlockEntry{}
	for rows.Next() {
		var b models.BlockEntry
		var reason string
		if err := rows.Scan(&b.ID, &b.UserID, &b.BlockedIdentity, &reason, &b.BlockedLabel, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Reason = models.BlockReason(reason)
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// IsBlocked reports whether the recipient has an entry for this identity.
// Callers on the ingestion path treat an error here as a rejection — an
// unreachable registry never silently allows a message through.
func IsBlocked(ctx context.Context, userID, senderIdentity string) (bool, error) {
	var exists bool
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocked_senders WHERE user_id = $1 AND blocked_identity = $2
		)
	`, userID, senderIdentity).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return exists, nil
}
