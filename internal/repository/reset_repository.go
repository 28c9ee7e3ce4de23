package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrResetTokenInvalid is returned when a reset token is unknown, expired
// or already used.
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// ResetTokenRepo keeps one-time password reset tokens in Redis.  Only the
// SHA-256 hash of a token is used as the key and the key expires on its own.
type ResetTokenRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewResetTokenRepo(rdb *redis.Client) *ResetTokenRepo {
	return &ResetTokenRepo{rdb: rdb, prefix: "pwreset"}
}

func (r *ResetTokenRepo) key(hash string) string { return r.prefix + ":" + hash }

// Save records that tokenHash may reset userID's password until ttl elapses.
func (r *ResetTokenRepo) Save(ctx context.Context, tokenHash string, userID uint64, ttl time.Duration) error {
	if err := r.rdb.SetEx(ctx, r.key(tokenHash), strconv.FormatUint(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume returns the user a token belongs to and deletes it in the same
// step, so a token works once.
func (r *ResetTokenRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	v, err := r.rdb.GetDel(ctx, r.key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrResetTokenInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrResetTokenInvalid
	}
	return id, nil
}
