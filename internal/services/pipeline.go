package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/whisperwall/whisperwall-backend/internal/config"
	"github.com/whisperwall/whisperwall-backend/internal/models"
	"github.com/whisperwall/whisperwall-backend/pkg/identity"
)

// IngestStatus is the terminal state of one submission through the pipeline.
type IngestStatus string

const (
	IngestAccepted            IngestStatus = "accepted"
	IngestRejectedValidation  IngestStatus = "rejected_validation"
	IngestRejectedBlocked     IngestStatus = "rejected_blocked"
	IngestRejectedRateLimited IngestStatus = "rejected_rate_limited"
)

// Stable reason codes attached to rejections. The HTTP layer maps these to
// status codes without re-deriving semantics.
const (
	ReasonEmptyContent     = "empty_content"
	ReasonContentTooLong   = "content_too_long"
	ReasonUnknownRecipient = "unknown_recipient"
	ReasonSenderBlocked    = "sender_blocked"
	ReasonRateLimited      = "rate_limited"
)

// IngestResult is the pipeline's verdict for one submission. Exactly one of
// the terminal states; Message is set only when accepted.
type IngestResult struct {
	Status     IngestStatus
	Reason     string
	RetryAfter time.Duration
	Message    *models.Message
}

// Accepted reports whether the message was persisted.
func (r IngestResult) Accepted() bool {
	return r.Status == IngestAccepted
}

// IngestStore is the durable state the pipeline consults. The production
// implementation is Postgres; tests substitute a stub.
type IngestStore interface {
	// ResolveRecipient returns the user id for an active profile username,
	// or ErrNotFound.
	ResolveRecipient(ctx context.Context, username string) (string, error)

	// IsBlocked reports whether the recipient has blocked this identity.
	IsBlocked(ctx context.Context, recipientID, senderIdentity string) (bool, error)

	// CheckAndInsert atomically counts recent messages and inserts the new
	// one when under the ceiling. Returns (nil, retryAfter, nil) when the
	// sender is over the limit.
	CheckAndInsert(ctx context.Context, recipientID, senderIdentity, content string, now time.Time) (*models.Message, time.Duration, error)
}

// Pipeline runs one inbound anonymous message through the ordered
// abuse-control steps: validate → hash identity → block check → rate check
// and insert. Steps are strictly sequential and short-circuit on the first
// rejection. The pipeline holds no state between submissions.
type Pipeline struct {
	salt   string
	policy config.AbusePolicy
	store  IngestStore
	now    func() time.Time
	record func(recipientID, senderIdentity string, kind models.AbuseEventKind, detail string)
}

// NewPipeline builds the production pipeline backed by Postgres.
func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		salt:   cfg.IdentitySalt,
		policy: cfg.Abuse,
		store:  postgresIngestStore{policy: cfg.Abuse},
		now:    time.Now,
		record: recordAbuseEventAsync,
	}
}

// Submit evaluates one submission exactly once. A non-nil error means the
// store was unreachable at a decision point the pipeline must not skip
// (recipient resolution, block check, count-and-insert) — fail-closed, the
// message is not persisted. Advisory systems (suspicion, audit) are not on
// this path.
func (p *Pipeline) Submit(ctx context.Context, recipientUsername, content, rawAddress string) (IngestResult, error) {
	now := p.now()

	// Validation precedes store work.
	if content == "" {
		return p.rejectValidation(rawAddress, ReasonEmptyContent), nil
	}
	if utf8.RuneCountInString(content) > p.policy.MaxContentLength {
		return p.rejectValidation(rawAddress, ReasonContentTooLong), nil
	}

	recipientID, err := p.store.ResolveRecipient(ctx, recipientUsername)
	if err == ErrNotFound {
		return p.rejectValidation(rawAddress, ReasonUnknownRecipient), nil
	}
	if err != nil {
		return IngestResult{}, err
	}

	senderIdentity := identity.Hash(p.salt, rawAddress)

	blocked, err := p.store.IsBlocked(ctx, recipientID, senderIdentity)
	if err != nil {
		// An unreachable block registry must never let a message through.
		return IngestResult{}, err
	}
	if blocked {
		p.recordRejection(recipientID, senderIdentity, models.AbuseEventBlocked, ReasonSenderBlocked)
		return IngestResult{Status: IngestRejectedBlocked, Reason: ReasonSenderBlocked}, nil
	}

	msg, wait, err := p.store.CheckAndInsert(ctx, recipientID, senderIdentity, content, now)
	if err != nil {
		return IngestResult{}, err
	}
	if msg == nil {
		p.recordRejection(recipientID, senderIdentity, models.AbuseEventRateLimited, ReasonRateLimited)
		return IngestResult{Status: IngestRejectedRateLimited, Reason: ReasonRateLimited, RetryAfter: wait}, nil
	}

	return IngestResult{Status: IngestAccepted, Message: msg}, nil
}

// rejectValidation records the advisory event and builds the rejection. No
// recipient has been resolved yet, so the event carries only the sender
// identity.
func (p *Pipeline) rejectValidation(rawAddress, reason string) IngestResult {
	p.recordRejection("", identity.Hash(p.salt, rawAddress), models.AbuseEventValidation, reason)
	return IngestResult{Status: IngestRejectedValidation, Reason: reason}
}

// recordRejection writes an advisory abuse event off the request path.
func (p *Pipeline) recordRejection(recipientID, senderIdentity string, kind models.AbuseEventKind, detail string) {
	if p.record != nil {
		p.record(recipientID, senderIdentity, kind, detail)
	}
}

func recordAbuseEventAsync(recipientID, senderIdentity string, kind models.AbuseEventKind, detail string) {
	go func() {
		_ = RecordAbuseEvent(recipientID, senderIdentity, kind, detail)
	}()
}

// postgresIngestStore adapts the Postgres-backed services to the pipeline's
// step interface.
type postgresIngestStore struct {
	policy config.AbusePolicy
}

func (s postgresIngestStore) ResolveRecipient(ctx context.Context, username string) (string, error) {
	return GetUserIDByUsername(ctx, username)
}

func (s postgresIngestStore) IsBlocked(ctx context.Context, recipientID, senderIdentity string) (bool, error) {
	return IsBlocked(ctx, recipientID, senderIdentity)
}

func (s postgresIngestStore) CheckAndInsert(ctx context.Context, recipientID, senderIdentity, content string, now time.Time) (*models.Message, time.Duration, error) {
	return checkAndInsertMessage(ctx, recipientID, senderIdentity, content, now, s.policy)
}
