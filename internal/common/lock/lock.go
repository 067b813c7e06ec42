// Package lock 提供基于 Redis 的分布式锁
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
)

// ErrNotAcquired 获取锁失败
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock 释放锁
type Unlock func()

// Locker 锁接口
type Locker interface {
	Lock(ctx context.Context, name string) (Unlock, error)
}

// RedisLocker 基于 redsync 的锁
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client, expiry time.Duration) *RedisLocker {
	if expiry <= 0 {
		expiry = 15 * time.Second
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		tries:  8,
	}
}

// Lock 加锁，锁被占用时按 redsync 默认退避重试
func (l *RedisLocker) Lock(ctx context.Context, name string) (Unlock, error) {
	m := l.rs.NewMutex(
		cache.BuildKey(cache.KeyPrefixLock, name),
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
	)
	if err := m.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, ErrNotAcquired
		}
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return func() {
		// 使用独立 context，请求取消后仍需释放
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_, _ = m.UnlockContext(ctx)
	}, nil
}

// NoopLocker 未配置 Redis 时使用
type NoopLocker struct{}

// Lock 空操作
func (NoopLocker) Lock(context.Context, string) (Unlock, error) {
	return func() {}, nil
}

// RoomKey 房间锁名
func RoomKey(roomID int64) string {
	return fmt.Sprintf("room:%d", roomID)
}
