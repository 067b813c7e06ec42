// Package main 数据库迁移与初始化数据
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	authService "github.com/dumeirei/hotel-booking-backend/internal/service/auth"
	roomService "github.com/dumeirei/hotel-booking-backend/internal/service/room"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	seed := flag.Bool("seed", true, "写入管理员账号与示例房间")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, db, *seed, log); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed")
}

// run 执行迁移，seed 为 true 时写入初始化数据
func run(ctx context.Context, cfg *config.Config, db *gorm.DB, seed bool, log *zap.Logger) error {
	if err := models.AutoMigrate(db.WithContext(ctx)); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Schema migrated", zap.Int("tables", len(models.All())))

	if !seed {
		return nil
	}

	users := repository.NewUserRepository(db)
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})
	admin, err := authService.NewAuthService(users, jwtManager, cfg.Crypto.BcryptCost).
		EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, cfg.Seed.AdminPhone)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("Admin account ready", zap.Int64("user_id", admin.ID), zap.String("email", admin.Email))

	if cfg.Seed.SampleRooms {
		rooms := roomService.NewRoomService(repository.NewRoomRepository(db), nil, nil, nil, roomService.Options{})
		n, err := rooms.SeedSampleRooms(ctx)
		if err != nil {
			return fmt.Errorf("seed rooms: %w", err)
		}
		log.Info("Sample rooms seeded", zap.Int("count", n))
	}
	return nil
}
