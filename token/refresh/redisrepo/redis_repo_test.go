package redisrepo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRepo_SetGetClear(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := New(client, "test", time.Hour)
	ctx := context.Background()

	d, err := repo.GetDigest(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, d)

	require.NoError(t, repo.SetDigest(ctx, "u1", "abc"))
	d, err = repo.GetDigest(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "abc", *d)

	require.True(t, mr.Exists("test:refresh:u1"))
	require.Equal(t, time.Hour, mr.TTL("test:refresh:u1"))

	require.NoError(t, repo.ClearDigest(ctx, "u1"))
	require.False(t, mr.Exists("test:refresh:u1"))
}

func TestRepo_Expires(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := New(client, "test", time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.SetDigest(ctx, "u1", "abc"))
	mr.FastForward(2 * time.Minute)

	d, err := repo.GetDigest(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestRepo_SwapDigest(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := New(client, "test", time.Hour)
	ctx := context.Background()

	ok, err := repo.SwapDigest(ctx, "u1", "abc", "def")
	require.NoError(t, err)
	require.False(t, ok, "nothing stored yet")

	require.NoError(t, repo.SetDigest(ctx, "u1", "abc"))

	ok, err = repo.SwapDigest(ctx, "u1", "abc", "def")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.SwapDigest(ctx, "u1", "abc", "ghi")
	require.NoError(t, err)
	require.False(t, ok)

	v, err := mr.Get("test:refresh:u1")
	require.NoError(t, err)
	require.Equal(t, "def", v)
	require.Equal(t, time.Hour, mr.TTL("test:refresh:u1"))
}

func TestRepo_ConcurrentSwapSingleWinner(t *testing.T) {
	_, client := newTestRedis(t)
	repo := New(client, "test", time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.SetDigest(ctx, "u1", "start"))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ok, err := repo.SwapDigest(ctx, "u1", "start", string(rune('a'+i))); err == nil && ok {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestRepo_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	repo := New(client, "test", time.Hour)
	mr.Close()

	_, err = repo.GetDigest(context.Background(), "u1")
	require.ErrorIs(t, err, ErrRedisUnavailable)
	require.Error(t, repo.Ping(context.Background()))
}
