package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return &RedisClient{Client: client}, mr
}

func TestLock(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()

	ok, err := rc.AcquireLock(ctx, "lock:p1", "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rc.AcquireLock(ctx, "lock:p1", "b", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// wrong owner leaves the lock in place
	require.NoError(t, rc.ReleaseLock(ctx, "lock:p1", "b"))
	assert.True(t, mr.Exists("lock:p1"))

	require.NoError(t, rc.ReleaseLock(ctx, "lock:p1", "a"))
	assert.False(t, mr.Exists("lock:p1"))
}

func TestLockExpires(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()

	ok, err := rc.AcquireLock(ctx, "lock:p2", "a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = rc.AcquireLock(ctx, "lock:p2", "b", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeletePattern(t *testing.T) {
	rc, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("products:list:1", "x"))
	require.NoError(t, mr.Set("products:list:2", "y"))
	require.NoError(t, mr.Set("other", "z"))

	require.NoError(t, rc.DeletePattern(ctx, "products:list:*"))
	assert.False(t, mr.Exists("products:list:1"))
	assert.False(t, mr.Exists("products:list:2"))
	assert.True(t, mr.Exists("other"))

	assert.NoError(t, rc.DeletePattern(ctx, "nothing:*"))
}
