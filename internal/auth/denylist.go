package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist tracks revoked token ids so logout takes effect before the
// token expires. Redis is optional: without a client, revocation is a
// no-op and tokens simply age out on their TTL.
type Denylist struct {
	redis *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{redis: client}
}

func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d.redis == nil {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, denyKey(tokenID), "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.redis == nil {
		return false, nil
	}
	_, err := d.redis.Get(ctx, denyKey(tokenID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func denyKey(tokenID string) string {
	return "revoked_token:" + tokenID
}
