package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist revokes JWTs by jti until their natural expiry. Entries carry
// a TTL equal to the token's remaining lifetime, so redis cleans up after
// itself and the set never grows past the active token population.
type Blacklist struct {
	rdb *redis.Client
}

func NewBlacklist(rdb *redis.Client) *Blacklist {
	return &Blacklist{rdb: rdb}
}

func blacklistKey(jti string) string {
	return fmt.Sprintf("token_blacklist:%s", jti)
}

func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to revoke.
		return nil
	}
	return b.rdb.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.rdb.Get(ctx, blacklistKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
