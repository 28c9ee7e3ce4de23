// Package queue defines the notification events exchanged over the message
// broker and the background consumer that delivers them.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueueName is the durable queue every notification event is published to.
const QueueName = "site.notifications"

// Event types.
const (
	TypeReviewSubmitted        = "review.submitted"
	TypeContactReceived        = "contact.received"
	TypePasswordResetRequested = "password.reset.requested"
)

// Envelope wraps every event on the wire.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ReviewSubmitted is published when a visitor leaves a review.  The review
// stays hidden until an admin approves it.
type ReviewSubmitted struct {
	ReviewID string  `json:"review_id"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Comment  string  `json:"comment"`
}

// ContactReceived is published for every contact form submission.
type ContactReceived struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

// PasswordResetRequested carries the one-time reset link for the admin.
type PasswordResetRequested struct {
	Email     string    `json:"email"`
	ResetURL  string    `json:"reset_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEnvelope marshals payload under the given type.
func NewEnvelope(typ string, payload any, at time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Envelope{Type: typ, OccurredAt: at.UTC(), Payload: raw}, nil
}

// Summary renders the envelope as a single human readable line, without the
// trailing newline.
func (e Envelope) Summary() (string, error) {
	ts := e.OccurredAt.UTC().Format(time.RFC3339)
	switch e.Type {
	case TypeReviewSubmitted:
		var p ReviewSubmitted
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", fmt.Errorf("decode %s: %w", e.Type, err)
		}
		return fmt.Sprintf("[%s] New review awaiting approval | id=%s | name=%q | rating=%.1f | comment=%q",
			ts, p.ReviewID, p.Name, p.Rating, p.Comment), nil
	case TypeContactReceived:
		var p ContactReceived
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", fmt.Errorf("decode %s: %w", e.Type, err)
		}
		return fmt.Sprintf("[%s] New contact message | id=%s | name=%q | email=%s | message=%q",
			ts, p.MessageID, p.Name, p.Email, p.Message), nil
	case TypePasswordResetRequested:
		var p PasswordResetRequested
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return "", fmt.Errorf("decode %s: %w", e.Type, err)
		}
		return fmt.Sprintf("[%s] Password reset requested | email=%s | link=%s | expires=%s",
			ts, p.Email, p.ResetURL, p.ExpiresAt.UTC().Format(time.RFC3339)), nil
	default:
		return "", fmt.Errorf("unknown event type %q", e.Type)
	}
}
