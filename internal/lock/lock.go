package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes processing per payout record. Acquire returns a release
// function on success, or ErrAlreadyLocked when another execution holds the
// record.
type Locker interface {
	Acquire(ctx context.Context, id uuid.UUID) (func(), error)
}

var ErrAlreadyLocked = fmt.Errorf("payout is already locked")

const redisKeyPrefix = "payout-lock"

// RedisLocker implements Locker with a per-record redis key (SET NX with TTL).
// The TTL bounds how long a crashed worker can hold a record hostage.
type RedisLocker struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewRedisLocker(redis redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisLocker{redis: redis, ttl: ttl}
}

// releaseScript deletes the lock key only if it still holds our token, so an
// expired lock re-acquired by another worker is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) Acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	key := fmt.Sprintf("%s:%s", redisKeyPrefix, id)
	token := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire payout lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyLocked
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.redis, []string{key}, token).Err()
	}
	return release, nil
}

// MemoryLocker is an in-process Locker for tests and single-instance setups.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[uuid.UUID]struct{})}
}

func (l *MemoryLocker) Acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[id]; ok {
		return nil, ErrAlreadyLocked
	}
	l.held[id] = struct{}{}
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, id)
	}, nil
}
