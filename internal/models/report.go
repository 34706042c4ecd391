package models

import (
	"fmt"
	"time"
)

// ReportReason classifies a recipient's complaint about a message.
type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonThreats       ReportReason = "threats"
	ReportReasonHateSpeech    ReportReason = "hate_speech"
	ReportReasonOther         ReportReason = "other"
)

// ParseReportReason validates a client-supplied report reason against the
// closed set. Unlike block reasons there is no empty default: a report must
// say why.
func ParseReportReason(s string) (ReportReason, error) {
	switch ReportReason(s) {
	case ReportReasonSpam, ReportReasonHarassment, ReportReasonInappropriate,
		ReportReasonThreats, ReportReasonHateSpeech, ReportReasonOther:
		return ReportReason(s), nil
	}
	return "", fmt.Errorf("invalid report reason: %q", s)
}

// Report is an immutable complaint filed by a recipient against one message.
// The same reporter may report the same message more than once.
type Report struct {
	ID         string       `json:"id"`
	MessageID  string       `json:"message_id"`
	ReporterID string       `json:"reporter_id"`
	Reason     ReportReason `json:"reason"`
	Details    string       `json:"details,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
