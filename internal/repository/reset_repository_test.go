package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetRepo(t *testing.T) (*ResetTokenRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewResetTokenRepo(rdb), mr
}

func TestResetTokenIsSingleUse(t *testing.T) {
	repo, _ := newResetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", 42, time.Minute))
	id, err := repo.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = repo.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenExpires(t *testing.T) {
	repo, mr := newResetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "abc", 7, time.Minute))
	assert.True(t, mr.Exists("pwreset:abc"))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Consume(ctx, "abc")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
