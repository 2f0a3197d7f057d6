// Package redisrepo keeps refresh token digests in Redis instead of on the
// user record.
package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-token-auth/token/refresh"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

const swapDigestScript = `
local current = redis.call("GET", KEYS[1])
if not current or current ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var swapDigestLua = redis.NewScript(swapDigestScript)

// Repo stores one digest per user under <prefix>:refresh:<userID>. Keys expire
// with the refresh token lifetime so abandoned sessions clean themselves up.
type Repo struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ refresh.DigestRepo = (*Repo)(nil)

func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Repo {
	return &Repo{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *Repo) key(userID string) string {
	return r.prefix + ":refresh:" + userID
}

func (r *Repo) GetDigest(ctx context.Context, userID string) (*string, error) {
	d, err := r.redis.Get(ctx, r.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return &d, nil
}

func (r *Repo) SetDigest(ctx context.Context, userID, digest string) error {
	if err := r.redis.Set(ctx, r.key(userID), digest, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *Repo) ClearDigest(ctx context.Context, userID string) error {
	if err := r.redis.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (r *Repo) SwapDigest(ctx context.Context, userID, old, next string) (bool, error) {
	res, err := swapDigestLua.Run(ctx, r.redis, []string{r.key(userID)}, old, next, r.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return res == 1, nil
}

// Ping is used by the health check.
func (r *Repo) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}

func (r *Repo) Close() error {
	return r.redis.Close()
}
