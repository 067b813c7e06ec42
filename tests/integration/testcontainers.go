//go:build integration

// Package integration 提供 testcontainers-go 集成测试环境
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// TestContainers 管理测试容器
type TestContainers struct {
	postgres *tcPostgres.PostgresContainer
	redis    *tcRedis.RedisContainer
	ctx      context.Context
}

// NewTestContainers 创建测试容器管理器
func NewTestContainers(ctx context.Context) *TestContainers {
	return &TestContainers{ctx: ctx}
}

// StartPostgres 启动 Postgres 容器
func (tc *TestContainers) StartPostgres() error {
	container, err := tcPostgres.Run(tc.ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("test_hotel_booking"),
		tcPostgres.WithUsername("test_user"),
		tcPostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to start postgres container: %w", err)
	}
	tc.postgres = container
	return nil
}

// StartRedis 启动 Redis 容器
func (tc *TestContainers) StartRedis() error {
	container, err := tcRedis.Run(tc.ctx, "redis:7-alpine")
	if err != nil {
		return fmt.Errorf("failed to start redis container: %w", err)
	}
	tc.redis = container
	return nil
}

// DB 连接 Postgres 并迁移表结构
func (tc *TestContainers) DB() (*gorm.DB, error) {
	if tc.postgres == nil {
		return nil, fmt.Errorf("postgres container not started")
	}
	dsn, err := tc.postgres.ConnectionString(tc.ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// Redis 获取 Redis 客户端
func (tc *TestContainers) Redis() (*redis.Client, error) {
	if tc.redis == nil {
		return nil, fmt.Errorf("redis container not started")
	}
	uri, err := tc.redis.ConnectionString(tc.ctx)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(tc.ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// StartAll 启动所有容器
func (tc *TestContainers) StartAll() error {
	if err := tc.StartPostgres(); err != nil {
		return err
	}
	return tc.StartRedis()
}

// Cleanup 清理所有容器
func (tc *TestContainers) Cleanup() error {
	var errs []error
	if tc.postgres != nil {
		if err := tc.postgres.Terminate(tc.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate postgres: %w", err))
		}
	}
	if tc.redis != nil {
		if err := tc.redis.Terminate(tc.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate redis: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
