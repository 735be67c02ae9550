package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "vizdeck:jobs:lock:"

// ErrLockNotAcquired means another instance holds the job lock.
var ErrLockNotAcquired = errors.New("failed to acquire job lock")

// Lock is a redis SETNX lock held for the duration of one job run. It
// keeps replicas of the service from running the same job concurrently.
type Lock struct {
	redis *redis.Client
	key   string
	value string
	ttl   time.Duration
}

// NewLock creates a lock for the named job.
func NewLock(redisClient *redis.Client, jobName string, ttl time.Duration) *Lock {
	return &Lock{
		redis: redisClient,
		key:   lockKeyPrefix + jobName,
		value: uuid.New().String(),
		ttl:   ttl,
	}
}

// Acquire takes the lock or returns ErrLockNotAcquired.
func (l *Lock) Acquire(ctx context.Context) error {
	acquired, err := l.redis.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
	}
	if !acquired {
		return ErrLockNotAcquired
	}
	return nil
}

// Release drops the lock if this instance still holds it. The value check
// keeps a slow run from releasing a lock that already expired and was
// re-acquired elsewhere.
func (l *Lock) Release(ctx context.Context) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`
	return l.redis.Eval(ctx, script, []string{l.key}, l.value).Err()
}
