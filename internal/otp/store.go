// Package otp issues and checks short-lived email verification codes.
package otp

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps at most one live code per email.
type Store interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes the code and reports true only when it matches.
	Consume(ctx context.Context, email, code string) (bool, error)
}

const keyPrefix = "otp:"

// consumeScript deletes the key only when the stored code matches, so a wrong
// guess does not burn the code.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, keyPrefix+email, code, ttl).Err()
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rdb, []string{keyPrefix + email}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
