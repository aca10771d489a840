package caching

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"hardwarestore/pkg/logger"
)

const keyPrefix = "hardwarestore:"

// CacheService holds short-lived auth state: login attempt counters and revoked token ids.
// Entity state is never cached.
type CacheService interface {
	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	// Token revocation
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

func rateLimitKey(key string) string {
	return keyPrefix + "ratelimit:" + key
}

func revokedKey(tokenID string) string {
	return keyPrefix + "revoked:" + tokenID
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService connects to addr, which may carry a redis:// or rediss:// scheme.
// A failed ping is logged; the client reconnects on later calls.
func NewRedisCacheService(ctx context.Context, addr, password string, db int, log *logger.Logger) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     normalizeAddr(addr),
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn(log.WithField(ctx, "addr", normalizeAddr(addr)), "redis ping failed on startup")
	} else {
		log.Debug(ctx, "redis connection established")
	}

	return &redisCacheService{client: client}
}

func newRedisCacheServiceWithClient(client *redis.Client) *redisCacheService {
	return &redisCacheService{client: client}
}

func normalizeAddr(addr string) string {
	for _, scheme := range []string{"redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimSuffix(strings.TrimPrefix(addr, scheme), "/")
		}
	}
	return addr
}

// countAttempt increments the counter and arms its expiry in one step. A
// counter found without a TTL is re-armed so it cannot pin a user forever.
var countAttempt = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// IsRateLimited counts one attempt against key and reports whether the limit is exceeded.
// When Redis is unreachable it returns the error with limited=false; the caller decides
// whether to let the attempt through.
func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := countAttempt.Run(ctx, r.client, []string{rateLimitKey(key)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return count > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, rateLimitKey(key)).Err()
}

func (r *redisCacheService) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *redisCacheService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}
