package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitRedisRepository_IncrementWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRateLimitRedisRepository(client)
	ctx := context.Background()

	var count int
	var start time.Time
	var err error
	for i := 0; i < 3; i++ {
		count, start, err = repo.IncrementWindow(ctx, "10.0.0.1", time.Hour, "ratelimit:client", 2*time.Hour)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, count)
	assert.Equal(t, start, start.Truncate(time.Hour))

	other, _, err := repo.IncrementWindow(ctx, "10.0.0.2", time.Hour, "ratelimit:client", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	assert.Greater(t, mr.TTL(keys[0]), time.Hour)
}
