package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/repository"
	"github.com/iliyamo/wine-dine/internal/storetest"
)

func newModerator() (*Moderator, *storetest.ReviewStore, *storetest.MessageStore) {
	rs := storetest.NewReviewStore()
	ms := storetest.NewMessageStore()
	return NewModerator(rs, ms), rs, ms
}

func ids(rs []model.Review) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestPubliclyVisibleIffApproved(t *testing.T) {
	for _, approved := range []bool{false, true} {
		r := model.Review{Approved: approved}
		assert.Equal(t, approved, PubliclyVisible(r))
	}
	assert.Equal(t, Pending, StateOf(model.Review{}))
	assert.Equal(t, "approved", StateOf(model.Review{Approved: true}).String())
}

func TestSubmitReviewStartsPending(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newModerator()

	r, err := m.SubmitReview(ctx, model.ReviewInput{Name: "Ana", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())
	assert.False(t, r.Approved)

	pending, err := m.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids(pending))

	public, err := m.PublicReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, public)
}

func TestSubmitReviewValidationNeverReachesStore(t *testing.T) {
	m, rs, _ := newModerator()
	_, err := m.SubmitReview(context.Background(), model.ReviewInput{Rating: 9})
	var verrs model.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Zero(t, rs.Calls["create"])
}

func TestApproveMovesReviewToPublic(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newModerator()
	r, err := m.SubmitReview(ctx, model.ReviewInput{Name: "Ana", Rating: 4, Comment: "nice"})
	require.NoError(t, err)

	require.NoError(t, m.ApproveReview(ctx, r.ID))
	public, err := m.PublicReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids(public))
	pending, err := m.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// approving twice is a no-op
	require.NoError(t, m.ApproveReview(ctx, r.ID))
	public, err = m.PublicReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, public, 1)
}

func TestApproveMissingReview(t *testing.T) {
	m, _, _ := newModerator()
	err := m.ApproveReview(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRejectDeletes(t *testing.T) {
	ctx := context.Background()
	m, rs, _ := newModerator()
	pending, err := m.SubmitReview(ctx, model.ReviewInput{Name: "A", Rating: 1, Comment: "meh"})
	require.NoError(t, err)
	approved, err := m.SubmitReview(ctx, model.ReviewInput{Name: "B", Rating: 5, Comment: "wow"})
	require.NoError(t, err)
	require.NoError(t, m.ApproveReview(ctx, approved.ID))

	require.NoError(t, m.RejectReview(ctx, pending.ID))
	// rejecting an approved review also deletes it
	require.NoError(t, m.RejectReview(ctx, approved.ID))

	for _, id := range []string{pending.ID, approved.ID} {
		_, ok := rs.Get(id)
		assert.False(t, ok)
	}
	p, err := m.PendingReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, p)
	pub, err := m.PublicReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub)
}

func TestReviewListsKeepNewestFirst(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newModerator()
	var created []string
	for _, n := range []string{"first", "second", "third"} {
		r, err := m.SubmitReview(ctx, model.ReviewInput{Name: n, Rating: 3, Comment: n})
		require.NoError(t, err)
		created = append(created, r.ID)
	}
	require.NoError(t, m.ApproveReview(ctx, created[0]))
	require.NoError(t, m.ApproveReview(ctx, created[2]))

	pub, err := m.PublicReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{created[2], created[0]}, ids(pub))
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	m, rs, ms := newModerator()
	rs.Fail = true
	ms.Fail = true

	_, err := m.PublicReviews(ctx)
	assert.ErrorIs(t, err, storetest.ErrInjected)
	assert.ErrorIs(t, m.ApproveReview(ctx, "x"), storetest.ErrInjected)
	assert.ErrorIs(t, m.MarkMessageRead(ctx, "x"), storetest.ErrInjected)
	_, err = m.SubmitMessage(ctx, model.ContactInput{Name: "a", Email: "a@b.co", Message: "m"})
	assert.ErrorIs(t, err, storetest.ErrInjected)
}

func TestMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newModerator()
	msg, err := m.SubmitMessage(ctx, model.ContactInput{Name: "Bo", Email: "bo@example.com", Message: "hi"})
	require.NoError(t, err)
	assert.False(t, msg.Read)

	msgs, err := m.ListMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, UnreadCount(msgs))

	require.NoError(t, m.MarkMessageRead(ctx, msg.ID))
	require.NoError(t, m.MarkMessageRead(ctx, msg.ID))
	msgs, err = m.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
	assert.Zero(t, UnreadCount(msgs))

	require.NoError(t, m.DeleteMessage(ctx, msg.ID))
	msgs, err = m.ListMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestDeleteUnreadMessage(t *testing.T) {
	ctx := context.Background()
	m, _, ms := newModerator()
	msg, err := m.SubmitMessage(ctx, model.ContactInput{Name: "Bo", Email: "bo@example.com", Message: "hi"})
	require.NoError(t, err)
	require.NoError(t, m.DeleteMessage(ctx, msg.ID))
	_, ok := ms.Get(msg.ID)
	assert.False(t, ok)
}
