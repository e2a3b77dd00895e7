package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// NonceTTL bounds how long a used nonce is remembered
const NonceTTL = 24 * time.Hour

// RedisNonceGuard remembers claimed nonces in Redis with SETNX
type RedisNonceGuard struct {
	rdb *redis.Client
}

func NewRedisNonceGuard(rdb *redis.Client) *RedisNonceGuard {
	return &RedisNonceGuard{rdb: rdb}
}

// Claim returns false when the nonce was already claimed
func (g *RedisNonceGuard) Claim(ctx context.Context, nonce string) (bool, error) {
	sum := sha256.Sum256([]byte(nonce)) // Nonces are not stored in clear
	return g.rdb.SetNX(ctx, "payment:nonce:"+hex.EncodeToString(sum[:]), 1, NonceTTL).Result()
}
