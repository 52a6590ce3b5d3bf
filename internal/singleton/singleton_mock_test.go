package singleton_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforce-ops/sentinel/internal/singleton"
)

func TestGuard_AcquireMocked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("free lock is taken", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		mock.Regexp().ExpectSetNX("sentinel:leader", `.+`, 10*time.Second).SetVal(true)

		guard := singleton.New(db, 10*time.Second)

		lock, err := guard.Acquire(ctx, "sentinel:leader")
		require.NoError(t, err)
		assert.NotNil(t, lock)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("held lock is refused", func(t *testing.T) {
		t.Parallel()

		db, mock := redismock.NewClientMock()
		mock.Regexp().ExpectSetNX("sentinel:leader", `.+`, 10*time.Second).SetVal(false)

		guard := singleton.New(db, 10*time.Second)

		_, err := guard.Acquire(ctx, "sentinel:leader")
		assert.ErrorIs(t, err, singleton.ErrLockAlreadyAcquired)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
