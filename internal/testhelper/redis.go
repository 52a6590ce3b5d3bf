package testhelper

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func NewTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	connString := os.Getenv("REDIS_URL")

	if connString == "" {
		t.Skipf("skipping due to missing environment variable %v", "REDIS_URL")
	}

	opt, err := redis.ParseURL(connString)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	require.NoError(t, client.Ping(ctx).Err())

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}
