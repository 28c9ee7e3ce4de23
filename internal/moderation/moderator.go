package moderation

import (
	"context"
	"fmt"

	"github.com/iliyamo/wine-dine/internal/model"
)

// ReviewStore is the slice of the content store the moderator needs for
// reviews.  List returns newest first.
type ReviewStore interface {
	Create(ctx context.Context, r *model.Review) error
	List(ctx context.Context) ([]model.Review, error)
	Update(ctx context.Context, id string, patch model.ReviewPatch) error
	Delete(ctx context.Context, id string) error
}

// MessageStore is the slice of the content store the moderator needs for
// contact messages.  List returns newest first.
type MessageStore interface {
	Create(ctx context.Context, m *model.ContactMessage) error
	List(ctx context.Context) ([]model.ContactMessage, error)
	Update(ctx context.Context, id string, patch model.MessagePatch) error
	Delete(ctx context.Context, id string) error
}

// Moderator applies the visibility rules on top of the content store.
type Moderator struct {
	Reviews  ReviewStore
	Messages MessageStore
}

// NewModerator wires a Moderator to its stores.
func NewModerator(reviews ReviewStore, messages MessageStore) *Moderator {
	return &Moderator{Reviews: reviews, Messages: messages}
}

// SubmitReview stores a visitor review in the pending state.
func (m *Moderator) SubmitReview(ctx context.Context, in model.ReviewInput) (model.Review, error) {
	r, err := in.Validate()
	if err != nil {
		return model.Review{}, err
	}
	r.Approved = false
	if err := m.Reviews.Create(ctx, &r); err != nil {
		return model.Review{}, fmt.Errorf("create review: %w", err)
	}
	return r, nil
}

// PublicReviews lists the approved reviews, newest first.
func (m *Moderator) PublicReviews(ctx context.Context) ([]model.Review, error) {
	all, err := m.Reviews.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return PublicReviews(all), nil
}

// PendingReviews lists the reviews awaiting a decision, newest first.
func (m *Moderator) PendingReviews(ctx context.Context) ([]model.Review, error) {
	all, err := m.Reviews.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return PendingReviews(all), nil
}

// ApproveReview moves a review to Approved.  Approving an approved review is
// a no-op.  There is no way back to Pending.
func (m *Moderator) ApproveReview(ctx context.Context, id string) error {
	approved := true
	if err := m.Reviews.Update(ctx, id, model.ReviewPatch{Approved: &approved}); err != nil {
		return fmt.Errorf("approve review %s: %w", id, err)
	}
	return nil
}

// RejectReview deletes the review.  It does not check the current state, so
// an approved review is removed the same way as a pending one.
func (m *Moderator) RejectReview(ctx context.Context, id string) error {
	if err := m.Reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("reject review %s: %w", id, err)
	}
	return nil
}

// SubmitMessage stores a contact message in the unread state.
func (m *Moderator) SubmitMessage(ctx context.Context, in model.ContactInput) (model.ContactMessage, error) {
	msg, err := in.Validate()
	if err != nil {
		return model.ContactMessage{}, err
	}
	msg.Read = false
	if err := m.Messages.Create(ctx, &msg); err != nil {
		return model.ContactMessage{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// ListMessages lists every contact message, newest first.
func (m *Moderator) ListMessages(ctx context.Context) ([]model.ContactMessage, error) {
	msgs, err := m.Messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MarkMessageRead flips a message to read.  Repeating it is harmless.
func (m *Moderator) MarkMessageRead(ctx context.Context, id string) error {
	read := true
	if err := m.Messages.Update(ctx, id, model.MessagePatch{Read: &read}); err != nil {
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	return nil
}

// DeleteMessage removes a message in either state.
func (m *Moderator) DeleteMessage(ctx context.Context, id string) error {
	if err := m.Messages.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	return nil
}
