package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/pkg/identity"
)

// memStore implements IngestStore in memory with real windowed counting, so
// pipeline tests exercise the same accept/reject behavior as the Postgres
// store without a database.
type memStore struct {
	users    map[string]string // username -> userID
	blocked  map[string]bool   // userID + "|" + identity
	policy   config.AbusePolicy
	inserted []models.Message

	resolveErr error
	blockedErr error
	insertErr  error
}

func newMemStore(policy config.AbusePolicy) *memStore {
	return &memStore{
		users:   map[string]string{},
		blocked: map[string]bool{},
		policy:  policy,
	}
}

func (s *memStore) ResolveRecipient(_ context.Context, username string) (string, error) {
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	id, ok := s.users[username]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

func (s *memStore) IsBlocked(_ context.Context, recipientID, senderIdentity string) (bool, error) {
	if s.blockedErr != nil {
		return false, s.blockedErr
	}
	return s.blocked[recipientID+"|"+senderIdentity], nil
}

func (s *memStore) CheckAndInsert(_ context.Context, recipientID, senderIdentity, content string, now time.Time) (*models.Message, time.Duration, error) {
	if s.insertErr != nil {
		return nil, 0, s.insertErr
	}

	count := 0
	oldest := time.Time{}
	for _, m := range s.inserted {
		if m.RecipientID == recipientID && m.SenderIdentity == senderIdentity && m.CreatedAt.After(now.Add(-s.policy.RateLimitWindow)) {
			count++
			if oldest.IsZero() || m.CreatedAt.Before(oldest) {
				oldest = m.CreatedAt
			}
		}
	}
	if count >= s.policy.RateLimitMax {
		return nil, retryAfter(oldest, now, s.policy.RateLimitWindow), nil
	}

	msg := models.Message{
		ID:             "msg-" + senderIdentity[:8],
		RecipientID:    recipientID,
		SenderIdentity: senderIdentity,
		Content:        content,
		CreatedAt:      now,
	}
	s.inserted = append(s.inserted, msg)
	return &msg, 0, nil
}

func testPipeline(store IngestStore, now time.Time) *Pipeline {
	return &Pipeline{
		salt:   "test-salt",
		policy: testPolicy(),
		store:  store,
		now:    func() time.Time { return now },
	}
}

func TestSubmitRejectsEmptyContent(t *testing.T) {
	store := newMemStore(testPolicy())
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", "", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedValidation, res.Status)
	assert.Equal(t, ReasonEmptyContent, res.Reason)
	assert.Empty(t, store.inserted)
}

func TestSubmitRejectsOverlongContent(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", strings.Repeat("a", 501), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedValidation, res.Status)
	assert.Equal(t, ReasonContentTooLong, res.Reason)
}

func TestSubmitRejectsUnknownRecipient(t *testing.T) {
	store := newMemStore(testPolicy())
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "nobody", "hello", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedValidation, res.Status)
	assert.Equal(t, ReasonUnknownRecipient, res.Reason)
}

func TestSubmitAcceptsAndPersists(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", "hello alice", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	require.NotNil(t, res.Message)
	assert.Equal(t, "hello alice", res.Message.Content)
	assert.Equal(t, identity.Hash("test-salt", "203.0.113.7"), res.Message.SenderIdentity)
	assert.Len(t, store.inserted, 1)
}

func TestSubmitRejectsBlockedSender(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	h := identity.Hash("test-salt", "203.0.113.7")
	store.blocked["u1|"+h] = true
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", "hello", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedBlocked, res.Status)
	assert.Equal(t, ReasonSenderBlocked, res.Reason)
	assert.Empty(t, store.inserted, "blocked messages must never be persisted")
}

func TestSubmitBlockAddRemoveLifecycle(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	h := identity.Hash("test-salt", "203.0.113.7")
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", "first", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Accepted())

	store.blocked["u1|"+h] = true
	res, err = p.Submit(context.Background(), "alice", "second", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedBlocked, res.Status)

	delete(store.blocked, "u1|"+h)
	res, err = p.Submit(context.Background(), "alice", "third", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
	assert.Len(t, store.inserted, 2)
}

func TestSubmitRateLimitsFourthMessage(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	now := time.Now()

	for i := 0; i < 3; i++ {
		p := testPipeline(store, now.Add(time.Duration(i)*time.Minute))
		res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Accepted(), "message %d should be accepted", i+1)
	}

	p := testPipeline(store, now.Add(5*time.Minute))
	res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedRateLimited, res.Status)
	assert.Equal(t, ReasonRateLimited, res.Reason)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Hour)
	assert.Len(t, store.inserted, 3)
}

func TestSubmitRateLimitIsRecipientScoped(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	store.users["bob"] = "u2"
	now := time.Now()

	for i := 0; i < 3; i++ {
		p := testPipeline(store, now)
		res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Accepted())
	}

	// Limited toward alice, but bob is a different window entirely.
	p := testPipeline(store, now)
	res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedRateLimited, res.Status)

	res, err = p.Submit(context.Background(), "bob", "msg", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
}

func TestSubmitWindowExpiryAllowsAgain(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	now := time.Now()

	for i := 0; i < 3; i++ {
		p := testPipeline(store, now)
		res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Accepted())
	}

	p := testPipeline(store, now.Add(61*time.Minute))
	res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Accepted())
}

func TestSubmitFailsClosedOnBlockCheckError(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	store.blockedErr = assert.AnError
	p := testPipeline(store, time.Now())

	_, err := p.Submit(context.Background(), "alice", "hello", "203.0.113.7")
	assert.Error(t, err)
	assert.Empty(t, store.inserted, "a failed block check must not let the message through")
}

func TestSubmitFailsClosedOnInsertError(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	store.insertErr = assert.AnError
	p := testPipeline(store, time.Now())

	_, err := p.Submit(context.Background(), "alice", "hello", "203.0.113.7")
	assert.Error(t, err)
}

// eventCapture stands in for the async abuse-event recorder.
type eventCapture struct {
	kinds      []models.AbuseEventKind
	details    []string
	identities []string
}

func (c *eventCapture) record(_, senderIdentity string, kind models.AbuseEventKind, detail string) {
	c.kinds = append(c.kinds, kind)
	c.details = append(c.details, detail)
	c.identities = append(c.identities, senderIdentity)
}

func TestSubmitRecordsRejectionEvents(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	h := identity.Hash("test-salt", "203.0.113.7")
	store.blocked["u1|"+h] = true

	events := &eventCapture{}
	p := testPipeline(store, time.Now())
	p.record = events.record

	for _, sub := range []struct{ recipient, content string }{
		{"alice", ""},
		{"alice", strings.Repeat("a", 501)},
		{"nobody", "hello"},
		{"alice", "hello"},
	} {
		_, err := p.Submit(context.Background(), sub.recipient, sub.content, "203.0.113.7")
		require.NoError(t, err)
	}

	assert.Equal(t, []models.AbuseEventKind{
		models.AbuseEventValidation,
		models.AbuseEventValidation,
		models.AbuseEventValidation,
		models.AbuseEventBlocked,
	}, events.kinds)
	assert.Equal(t, []string{ReasonEmptyContent, ReasonContentTooLong, ReasonUnknownRecipient, ReasonSenderBlocked}, events.details)
	for _, id := range events.identities {
		assert.Equal(t, h, id, "events carry the hashed identity, never the raw address")
	}
}

func TestSubmitRecordsRateLimitedEvent(t *testing.T) {
	store := newMemStore(testPolicy())
	store.users["alice"] = "u1"
	events := &eventCapture{}
	now := time.Now()

	for i := 0; i < 3; i++ {
		p := testPipeline(store, now)
		p.record = events.record
		res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
		require.NoError(t, err)
		require.True(t, res.Accepted())
	}
	assert.Empty(t, events.kinds, "accepted messages produce no events")

	p := testPipeline(store, now)
	p.record = events.record
	res, err := p.Submit(context.Background(), "alice", "msg", "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, IngestRejectedRateLimited, res.Status)
	assert.Equal(t, []models.AbuseEventKind{models.AbuseEventRateLimited}, events.kinds)
}

func TestSubmitValidatesBeforeTouchingStore(t *testing.T) {
	store := newMemStore(testPolicy())
	store.resolveErr = assert.AnError
	p := testPipeline(store, time.Now())

	res, err := p.Submit(context.Background(), "alice", "", "203.0.113.7")
	require.NoError(t, err, "validation rejects must not reach the store")
	assert.Equal(t, IngestRejectedValidation, res.Status)
}
