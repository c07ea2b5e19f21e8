package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	lockoutWindow    = 15 * time.Minute
)

// Lockout tracks failed sign-in attempts per username in redis. The
// counter and the block flag both expire with the window, so a locked
// account frees itself without a maintenance pass.
type Lockout struct {
	rdb *redis.Client
}

func NewLockout(rdb *redis.Client) *Lockout {
	return &Lockout{rdb: rdb}
}

func attemptsKey(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

func blockedKey(username string) string {
	return fmt.Sprintf("login_blocked:%s", username)
}

// RecordFailure bumps the attempt counter and returns true when the
// account just crossed the lockout threshold.
func (l *Lockout) RecordFailure(ctx context.Context, username string) (bool, error) {
	attempts, err := l.rdb.Incr(ctx, attemptsKey(username)).Result()
	if err != nil {
		return false, err
	}
	if err := l.rdb.Expire(ctx, attemptsKey(username), lockoutWindow).Err(); err != nil {
		return false, err
	}

	if attempts >= maxLoginAttempts {
		if err := l.rdb.Set(ctx, blockedKey(username), "1", lockoutWindow).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (l *Lockout) IsBlocked(ctx context.Context, username string) (bool, error) {
	_, err := l.rdb.Get(ctx, blockedKey(username)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Clear resets the counter after a successful sign-in.
func (l *Lockout) Clear(ctx context.Context, username string) error {
	return l.rdb.Del(ctx, attemptsKey(username), blockedKey(username)).Err()
}
