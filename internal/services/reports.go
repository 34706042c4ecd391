package services

import (
	"context"
	"database/sql"

	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
)

// SubmitReport files a complaint against one message. The reporter must be
// the message's recipient (ErrForbidden otherwise). Returns the stored report
// and the reported message's sender identity so the client can offer
// one-click blocking without re-deriving the hash.
//
// Reports are deliberately not deduplicated: the same recipient may report
// the same message more than once.
func SubmitReport(ctx context.Context, messageID, reporterID string, reason models.ReportReason, details string) (*models.Report, string, error) {
	var recipientID, senderIdentity string
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT recipient_id, sender_identity FROM messages WHERE id = $1
	`, messageID).Scan(&recipientID, &senderIdentity)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	if recipientID != reporterID {
		return nil, "", ErrForbidden
	}

	report := &models.Report{
		MessageID:  messageID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    details,
	}
	err = database.PostgresDB.QueryRowContext(ctx, `
		INSERT INTO reports (message_id, reporter_id, reason, details)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`, messageID, reporterID, string(reason), details).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return nil, "", err
	}

	return report, senderIdentity, nil
}
