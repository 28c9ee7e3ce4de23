package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/wine-dine/internal/model"
)

// MessageRepo stores contact form submissions in `contact_messages`.
type MessageRepo struct{ db *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts an unread message.
func (r *MessageRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	const q = `INSERT INTO contact_messages (id, name, email, message, created_at, is_read)
	           VALUES (?, ?, ?, ?, ?, FALSE)`
	if _, err := r.db.ExecContext(ctx, q, id, m.Name, m.Email, m.Message, now); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	m.ID = id
	m.CreatedAt = now
	m.Read = false
	return nil
}

// List returns all messages, newest first.
func (r *MessageRepo) List(ctx context.Context) ([]model.ContactMessage, error) {
	const q = `SELECT id, name, email, message, created_at, is_read
	           FROM contact_messages ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]model.ContactMessage, 0)
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.Read); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of patch, returning ErrNotFound for an
// unknown id.
func (r *MessageRepo) Update(ctx context.Context, id string, patch model.MessagePatch) error {
	if patch.Read == nil {
		return nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE contact_messages SET is_read = ? WHERE id = ?`, *patch.Read, id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a message in any state.
func (r *MessageRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
