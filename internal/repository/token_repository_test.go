package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepoValidateRefresh(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}
	query := regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash=?")

	cases := []struct {
		name    string
		rows    *sqlmock.Rows
		wantID  uint64
		wantErr error
	}{
		{"usable", sqlmock.NewRows(cols).AddRow(1, 7, "h", now.Add(time.Hour), nil, now), 7, nil},
		{"expired", sqlmock.NewRows(cols).AddRow(1, 7, "h", now.Add(-time.Second), nil, now), 0, sql.ErrNoRows},
		{"revoked", sqlmock.NewRows(cols).AddRow(1, 7, "h", now.Add(time.Hour), now, now), 0, sql.ErrNoRows},
		{"unknown", sqlmock.NewRows(cols), 0, sql.ErrNoRows},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery(query).WithArgs("h").WillReturnRows(tc.rows)

			repo := NewTokenRepo(db)
			repo.now = func() time.Time { return now }
			id, err := repo.ValidateRefresh(context.Background(), "h")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantID, id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTokenRepoRevoke(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL")).
		WithArgs(now, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL")).
		WithArgs(now, "h").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTokenRepo(db)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.RevokeAllForUser(context.Background(), 7))
	require.NoError(t, repo.RevokeByHash(context.Background(), "h"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
