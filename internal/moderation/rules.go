// Package moderation holds the visibility rules for visitor-submitted content
// and the transitions an admin applies to it.
//
// A review is pending until approved and only approved reviews are shown to
// the public.  Rejecting a review deletes it.  A contact message starts unread
// and can only move to read.  Every transition is written straight to the
// content store.
package moderation

import "github.com/iliyamo/wine-dine/internal/model"

// ReviewState is the moderation state of a review.
type ReviewState int

const (
	// Pending reviews await a decision and are hidden from the public.
	Pending ReviewState = iota
	// Approved reviews are publicly visible.
	Approved
	// Deleted reviews no longer exist in the store.  Rejection lands here.
	Deleted
)

func (s ReviewState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Deleted:
		return "deleted"
	}
	return "unknown"
}

// StateOf derives the state of a stored review.
func StateOf(r model.Review) ReviewState {
	if r.Approved {
		return Approved
	}
	return Pending
}

// PubliclyVisible reports whether r may be shown on the public reviews page.
func PubliclyVisible(r model.Review) bool { return StateOf(r) == Approved }

// PublicReviews keeps the approved reviews, preserving order.
func PublicReviews(all []model.Review) []model.Review {
	return filterReviews(all, Approved)
}

// PendingReviews keeps the reviews awaiting moderation, preserving order.
func PendingReviews(all []model.Review) []model.Review {
	return filterReviews(all, Pending)
}

func filterReviews(all []model.Review, want ReviewState) []model.Review {
	out := make([]model.Review, 0, len(all))
	for _, r := range all {
		if StateOf(r) == want {
			out = append(out, r)
		}
	}
	return out
}

// UnreadCount returns how many messages have not been marked read.
func UnreadCount(msgs []model.ContactMessage) int {
	n := 0
	for _, m := range msgs {
		if !m.Read {
			n++
		}
	}
	return n
}
