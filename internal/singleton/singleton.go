// Package singleton guards against two instances watching the same community
// at once. The guard is a redis lock with a TTL: the holder refreshes it
// periodically and a crashed holder's lock simply expires.
package singleton

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofrs/uuid"
)

const lockTopicFormat = "pubsub:locks:%s"

// releaseScript deletes the lock only when the caller still holds it, and
// wakes up anyone blocked in WaitAcquire.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	redis.call("del", KEYS[1])
	redis.call("publish", KEYS[2], ARGV[1])
	return 1
end
return 0
`)

// refreshScript extends the TTL only for the current holder.
var refreshScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

type Guard struct {
	client  *redis.Client
	timeout time.Duration
}

func New(client *redis.Client, timeout time.Duration) *Guard {
	return &Guard{
		client:  client,
		timeout: timeout,
	}
}

func (g *Guard) setLock(ctx context.Context, key, uid string) error {
	result, err := g.client.SetNX(ctx, key, uid, g.timeout).Result()
	if err != nil {
		return err
	}

	if !result {
		return ErrLockAlreadyAcquired
	}

	return nil
}

func (g *Guard) Acquire(ctx context.Context, key string) (*Lock, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	if err := g.setLock(ctx, key, uid.String()); err != nil {
		return nil, err
	}

	return newLock(g, key, uid.String()), nil
}

// WaitAcquire blocks until the current holder releases, the wait times out,
// or ctx is cancelled.
func (g *Guard) WaitAcquire(ctx context.Context, key string, timeout time.Duration) (*Lock, error) {
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	if err := g.setLock(ctx, key, uid.String()); err == nil {
		return newLock(g, key, uid.String()), nil
	}

	ch := fmt.Sprintf(lockTopicFormat, key)
	pubsub := g.client.Subscribe(ctx, ch)
	defer func() { _ = pubsub.Close() }()

	select {
	case <-time.After(timeout):
		return nil, ErrLockAcquisitionTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-pubsub.Channel():
		if err := g.setLock(ctx, key, uid.String()); err != nil {
			return nil, err
		}
		return newLock(g, key, uid.String()), nil
	}
}

type Lock struct {
	guard *Guard
	key   string
	uid   string
}

func newLock(guard *Guard, key, uid string) *Lock {
	return &Lock{
		guard: guard,
		key:   key,
		uid:   uid,
	}
}

// Refresh extends the lock's TTL. ErrLockExpired means another instance may
// already hold the lock and the caller should stand down.
func (l *Lock) Refresh(ctx context.Context) error {
	result, err := refreshScript.Run(ctx, l.guard.client, []string{l.key}, l.uid, l.guard.timeout.Milliseconds()).Result()
	if err != nil {
		return err
	}

	if result == int64(0) {
		return ErrLockExpired
	}

	return nil
}

func (l *Lock) Release(ctx context.Context) error {
	ch := fmt.Sprintf(lockTopicFormat, l.key)

	result, err := releaseScript.Run(ctx, l.guard.client, []string{l.key, ch}, l.uid).Result()
	if err != nil {
		return err
	}

	if result == int64(0) {
		return ErrLockExpired
	}

	return nil
}
