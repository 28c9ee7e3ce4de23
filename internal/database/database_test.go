package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("wine", "pw", "db", "3306", "winedine")
	assert.Contains(t, dsn, "wine:pw@tcp(db:3306)/winedine?")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestMigrateAppliesInOrder(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.Equal(t, []string{
		"migrations/0001_users.sql",
		"migrations/0002_refresh_tokens.sql",
		"migrations/0003_menu_items.sql",
		"migrations/0004_reviews.sql",
		"migrations/0005_contact_messages.sql",
	}, names)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	for _, table := range []string{"users", "refresh_tokens", "menu_items", "reviews", "contact_messages"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " ")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var applied []string
	require.NoError(t, Migrate(context.Background(), db, func(n string) { applied = append(applied, n) }))
	assert.Equal(t, names, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
