package checkout

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clorindastore/storefront-backend/internal/cart"
)

// Guard suppresses duplicate order submissions. Acquire reports whether
// the caller holds the slot for the given key; Release frees it early
// so a failed create does not lock the user out for the full TTL.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisGuard implements the short-lived duplicate-submission guard with
// SET NX and a TTL. It is advisory only: payment session creation is
// idempotent per order, so a missed guard costs UX, not money.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, "checkout:guard:"+key, 1, g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, "checkout:guard:"+key).Err()
}

// NopGuard always admits; used when Redis is not configured.
type NopGuard struct{}

func (NopGuard) Acquire(ctx context.Context, key string) (bool, error) { return true, nil }

func (NopGuard) Release(ctx context.Context, key string) error { return nil }

// guardKey fingerprints (user, cart contents) so only identical
// back-to-back submissions collide.
func guardKey(userID int, items []cart.SnapshotItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", userID)
	for _, it := range items {
		variant := int64(0)
		if it.VariantID != nil {
			variant = *it.VariantID
		}
		fmt.Fprintf(&b, "|%d:%d:%d", it.ProductID, variant, it.Quantity)
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
