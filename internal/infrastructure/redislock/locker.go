package redislock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/pkg/id"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:lock:"

// release deletes the key only if it still holds our token.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a best-effort distributed mutex built on SET NX PX.
type Locker struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) *Locker {
	return &Locker{rdb: rdb}
}

// NewClient builds a go-redis client with the pool settings used across the service.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// Acquire takes key for ttl. It returns domain.ErrLockBusy when someone else holds it.
// The returned func releases the lock and is safe to call more than once.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := id.New()
	ok, err := l.rdb.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Detached so a cancelled request still frees the lock.
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := release.Run(ctx, l.rdb, []string{keyPrefix + key}, token).Err(); err != nil {
				slog.Warn("redis unlock failed", "key", key, "err", err)
			}
		})
	}, nil
}
