package services

import (
	"context"
	"time"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
)

// InboxMessage is a message as rendered in the recipient's inbox, with the
// advisory suspicion verdict for its sender attached.
type InboxMessage struct {
	models.Message
	Suspicion SuspicionVerdict `json:"suspicion"`
}

// ListInbox returns the recipient's messages, newest first, with a suspicion
// verdict per message. Verdicts are computed on read and cached per sender
// within the call; detector failures degrade to a low verdict rather than
// failing the listing.
func ListInbox(ctx context.Context, userID string, limit, skip int, p config.AbusePolicy) ([]InboxMessage, int64, error) {
	var total int64
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT id, recipient_id, sender_identity, content, created_at, is_read
		FROM messages
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RecipientID, &m.SenderIdentity, &m.Content, &m.CreatedAt, &m.IsRead); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	now := time.Now()
	verdicts := map[string]SuspicionVerdict{}
	inbox := make([]InboxMessage, 0, len(messages))
	for _, m := range messages {
		v, ok := verdicts[m.SenderIdentity]
		if !ok {
			v = ClassifySender(ctx, userID, m.SenderIdentity, now, p)
			verdicts[m.SenderIdentity] = v
		}
		inbox = append(inbox, InboxMessage{Message: m, Suspicion: v})
	}

	return inbox, total, nil
}

// UnreadCount returns how many messages the recipient has not read yet.
func UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE
	`, userID).Scan(&n)
	return n, err
}

// MarkMessageRead flags a message as read, scoped to its recipient.
func MarkMessageRead(ctx context.Context, userID, messageID string) error {
	res, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE WHERE id = $1 AND recipient_id = $2
	`, messageID, userID)
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

// DeleteMessage removes a message, scoped to its recipient. Only the
// recipient ever deletes messages; senders have no handle to them.
func DeleteMessage(ctx context.Context, userID, messageID string) error {
	res, err := database.PostgresDB.ExecContext(ctx, `
		DELETE FROM messages WHERE id = $1 AND recipient_id = $2
	`, messageID, userID)
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
