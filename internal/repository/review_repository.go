package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/wine-dine/internal/model"
)

// ReviewRepo stores visitor reviews in the `reviews` table.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review.  New reviews are always unapproved regardless of
// what the caller set.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	const q = `INSERT INTO reviews (id, name, rating, comment, created_at, approved)
	           VALUES (?, ?, ?, ?, ?, FALSE)`
	if _, err := r.db.ExecContext(ctx, q, id, rv.Name, rv.Rating, rv.Comment, now); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	rv.ID = id
	rv.CreatedAt = now
	rv.Approved = false
	return nil
}

// List returns all reviews, newest first.
func (r *ReviewRepo) List(ctx context.Context) ([]model.Review, error) {
	const q = `SELECT id, name, rating, comment, created_at, approved
	           FROM reviews ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.Approved); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of patch.  It returns ErrNotFound when
// no review has the given id.
func (r *ReviewRepo) Update(ctx context.Context, id string, patch model.ReviewPatch) error {
	if patch.Approved == nil {
		return nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET approved = ? WHERE id = ?`, *patch.Approved, id)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a review.  A missing review is not an error.
func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}

// requireAffected maps a zero row count to ErrNotFound.  The DSN sets
// clientFoundRows so a row that already held the new value still counts.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
