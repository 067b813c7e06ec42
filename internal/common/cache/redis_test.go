// Package cache Redis 缓存模块单元测试
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
)

// setupMiniRedis 创建 miniredis 测试实例
func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestInit_Success(t *testing.T) {
	s := setupMiniRedis(t)

	client, err := Init(&config.RedisConfig{
		Host:        s.Host(),
		Port:        s.Server().Addr().Port,
		PoolSize:    5,
		DialTimeout: 1,
		ReadTimeout: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	assert.Same(t, client, GetClient())
}

func TestInit_Unreachable(t *testing.T) {
	_, err := Init(&config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 1})
	assert.Error(t, err)
}

func TestCache_SetGetDelete(t *testing.T) {
	s := setupMiniRedis(t)
	c := New(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	ctx := context.Background()

	type roomView struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	key := BuildKey(KeyPrefixRoom, "1")
	require.NoError(t, c.Set(ctx, key, roomView{ID: 1, Name: "Suite", Price: 250}, time.Minute))

	var got roomView
	hit, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Suite", got.Name)
	assert.Equal(t, 250.0, got.Price)

	s.FastForward(2 * time.Minute)
	hit, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, key, roomView{ID: 1}, time.Minute))
	require.NoError(t, c.Delete(ctx, key))
	assert.False(t, s.Exists(key))
}

func TestCache_DisabledIsNoop(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	assert.False(t, c.Enabled())
	assert.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "room:12", BuildKey(KeyPrefixRoom, "12"))
	assert.Equal(t, "lock:room:3", BuildKey(KeyPrefixLock, "room", "3"))
}
