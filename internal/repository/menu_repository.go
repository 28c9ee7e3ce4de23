// Package repository contains data access logic separated from HTTP handlers.
// This file holds the menu item collection: create, list in category order
// and delete.  Menu items are never edited in place.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/wine-dine/internal/model"
)

// MenuRepo encapsulates all database queries related to menu items.
type MenuRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewMenuRepo constructs a MenuRepo with the provided DB handle.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// Create inserts a menu item.  The store assigns the ID and creation time
// and writes them back into it.
func (r *MenuRepo) Create(ctx context.Context, it *model.MenuItem) error {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	const q = `INSERT INTO menu_items (id, name, description, price, category, image_url, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, it.Name, it.Description, it.Price, it.Category, it.ImageURL, now); err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	it.ID = id
	it.CreatedAt = now
	return nil
}

// List returns every menu item ordered by category.  Items within a
// category keep their creation order.
func (r *MenuRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	const q = `SELECT id, name, description, price, category, image_url, created_at
	           FROM menu_items ORDER BY category, created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	out := make([]model.MenuItem, 0)
	for rows.Next() {
		var it model.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return out, nil
}

// Delete removes a menu item.  Deleting an item that does not exist is not
// an error.
func (r *MenuRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
