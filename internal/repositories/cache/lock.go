package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock already held by another process")

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Lock is a redis lease acquired with SET NX.
type Lock struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Locker hands out leases on named resources.
type Locker struct {
	client redis.UniversalClient
}

func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{client: client}
}

// Acquire takes the lease on resource for ttl, or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, resource string, ttl time.Duration) (*Lock, error) {
	key := fmt.Sprintf("lock:%s", resource)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: l.client, key: key, token: token}, nil
}

// Release deletes the lease if this holder still owns it.
func (lk *Lock) Release(ctx context.Context) error {
	n, err := lk.client.Eval(ctx, releaseScript, []string{lk.key}, lk.token).Int()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lock %s expired before release", lk.key)
	}
	return nil
}

// Lease acquires resource and returns its release func. ok is false when
// another holder owns it.
func (l *Locker) Lease(ctx context.Context, resource string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	lk, err := l.Acquire(ctx, resource, ttl)
	if errors.Is(err, ErrLockHeld) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return lk.Release, true, nil
}
