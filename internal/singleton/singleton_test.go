package singleton_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforce-ops/sentinel/internal/singleton"
	"github.com/taskforce-ops/sentinel/internal/testhelper"
)

func testKey() string {
	return fmt.Sprintf("test:leader:%d-%d", time.Now().UnixNano(), rand.Int63())
}

func TestGuard_Acquire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key := testKey()

	client := testhelper.NewTestRedisClient(t)
	guard := singleton.New(client, 10*time.Second)

	lock, err := guard.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, key)
	assert.ErrorIs(t, err, singleton.ErrLockAlreadyAcquired)

	require.NoError(t, lock.Release(ctx))

	_, err = guard.Acquire(ctx, key)
	assert.NoError(t, err)
}

func TestGuard_WaitAcquire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key := testKey()

	client := testhelper.NewTestRedisClient(t)
	guard := singleton.New(client, 10*time.Second)

	lock, err := guard.Acquire(ctx, key)
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = lock.Release(ctx)
	}()

	waited, err := guard.WaitAcquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.NotNil(t, waited)
}

func TestGuard_WaitAcquireTimeout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key := testKey()

	client := testhelper.NewTestRedisClient(t)
	guard := singleton.New(client, 10*time.Second)

	_, err := guard.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = guard.WaitAcquire(ctx, key, 200*time.Millisecond)
	assert.ErrorIs(t, err, singleton.ErrLockAcquisitionTimeout)
}

func TestLock_Refresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key := testKey()

	client := testhelper.NewTestRedisClient(t)
	guard := singleton.New(client, time.Second)

	lock, err := guard.Acquire(ctx, key)
	require.NoError(t, err)

	assert.NoError(t, lock.Refresh(ctx))

	require.NoError(t, lock.Release(ctx))

	assert.ErrorIs(t, lock.Refresh(ctx), singleton.ErrLockExpired)
	assert.ErrorIs(t, lock.Release(ctx), singleton.ErrLockExpired)
}
