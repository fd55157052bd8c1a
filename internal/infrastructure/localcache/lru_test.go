package localcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxEntries int) *LRUCache {
	t.Helper()
	c, err := NewLRUCache(Config{MaxEntries: maxEntries}, logrus.New())
	require.NoError(t, err)
	return c
}

func TestLRU_SetThenGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 1000)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", string(got))

	require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Minute))
	got, ok, _ = c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v2", string(got))
}

func TestLRU_ExpiredEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 10)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	now = now.Add(49 * time.Millisecond)
	_, ok, _ := c.Get(ctx, "short")
	require.True(t, ok)

	now = now.Add(time.Millisecond)
	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestLRU_NewestWriteAdmittedWhenFull(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 100)

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("hot-%d", i)
		require.NoError(t, c.Set(ctx, key, []byte("old"), time.Minute))
		for r := 0; r < 5; r++ {
			_, ok, _ := c.Get(ctx, key)
			require.True(t, ok)
		}
	}

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("fresh-%d", i)
		require.NoError(t, c.Set(ctx, key, []byte("new"), time.Minute))
		got, ok, err := c.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		require.Equal(t, "new", string(got))
	}
	require.Equal(t, 100, c.Len())

	// The least recently used keys made room.
	_, ok, _ := c.Get(ctx, "hot-0")
	require.False(t, ok)
	_, ok, _ = c.Get(ctx, "hot-99")
	require.True(t, ok)
}

func TestLRU_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 10)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "abc", string(got))
}

func TestLRU_Delete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, 10)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ := c.Get(ctx, "k")
	require.False(t, ok)
}

func TestLRU_RejectsZeroCapacity(t *testing.T) {
	_, err := NewLRUCache(Config{}, nil)
	require.Error(t, err)
}
