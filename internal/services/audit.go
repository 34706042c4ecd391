package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/whisperwall/whisperwall-backend/internal/database"
	"github.com/whisperwall/whisperwall-backend/internal/models"
)

const abuseEventsCollection = "abuse_events"

// RecordAbuseEvent writes an advisory record of a rejected submission to
// MongoDB. Callers fire and forget: an unreachable event log never affects
// the accept/reject decision.
func RecordAbuseEvent(recipientID, senderIdentity string, kind models.AbuseEventKind, detail string) error {
	if database.DB == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := models.AbuseEvent{
		CreatedAt:      time.Now(),
		RecipientID:    recipientID,
		SenderIdentity: senderIdentity,
		Kind:           kind,
		Detail:         detail,
	}

	_, err := database.DB.Collection(abuseEventsCollection).InsertOne(ctx, event)
	return err
}

// ListAbuseEvents returns recent events, newest first (admin visibility).
func ListAbuseEvents(ctx context.Context, limit int) ([]models.AbuseEvent, error) {
	if database.DB == nil {
		return []models.AbuseEvent{}, nil
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1})
	findOptions.SetLimit(int64(limit))

	cursor, err := database.DB.Collection(abuseEventsCollection).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []models.AbuseEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CleanupOldAbuseEvents removes events older than the given age. The event
// log is a rolling window, not an archive.
func CleanupOldAbuseEvents(hoursOld int) error {
	if database.DB == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-time.Duration(hoursOld) * time.Hour)
	_, err := database.DB.Collection(abuseEventsCollection).DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoff},
	})
	return err
}

// StartAbuseEventCleanup runs CleanupOldAbuseEvents periodically in the
// background.
func StartAbuseEventCleanup(cleanupIntervalHours, eventsAgeHours int) {
	if cleanupIntervalHours <= 0 {
		cleanupIntervalHours = 1
	}
	if eventsAgeHours <= 0 {
		eventsAgeHours = 24
	}

	go func() {
		ticker := time.NewTicker(time.Duration(cleanupIntervalHours) * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		_ = CleanupOldAbuseEvents(eventsAgeHours)

		for range ticker.C {
			_ = CleanupOldAbuseEvents(eventsAgeHours)
		}
	}()
}
