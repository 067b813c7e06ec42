package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/dumeirei/hotel-booking-backend/docs"
	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/lock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	adminHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/admin"
	authHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/auth"
	bookingHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/booking"
	paymentHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/payment"
	roomHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/room"
	userHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/user"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	adminService "github.com/dumeirei/hotel-booking-backend/internal/service/admin"
	authService "github.com/dumeirei/hotel-booking-backend/internal/service/auth"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
	roomService "github.com/dumeirei/hotel-booking-backend/internal/service/room"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
	"github.com/dumeirei/hotel-booking-backend/pkg/oss"
	"github.com/dumeirei/hotel-booking-backend/pkg/payment"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

// handlers 路由所需的全部处理器
type handlers struct {
	auth          *authHandler.Handler
	user          *userHandler.Handler
	room          *roomHandler.Handler
	booking       *bookingHandler.Handler
	payment       *paymentHandler.Handler
	adminBooking  *adminHandler.BookingHandler
	adminCustomer *adminHandler.CustomerHandler
	adminRoom     *adminHandler.RoomHandler
}

// externals 外部服务客户端
type externals struct {
	sender   sms.Sender
	gateway  payment.Gateway
	uploader oss.Uploader
}

// newExternals 按配置创建短信、支付、对象存储客户端，短信与支付外包一层熔断
func newExternals(cfg *config.Config, m *metrics.Metrics) (*externals, error) {
	sender, err := sms.New(&sms.Config{
		Provider:        cfg.SMS.Provider,
		AccessKeyID:     cfg.SMS.AccessKeyID,
		AccessKeySecret: cfg.SMS.AccessKeySecret,
		SignName:        cfg.SMS.SignName,
		TemplateID:      cfg.SMS.TemplateID,
		TwilioSID:       cfg.SMS.TwilioSID,
		TwilioToken:     cfg.SMS.TwilioToken,
		FromNumber:      cfg.SMS.FromNumber,
		MessageFormat:   cfg.SMS.MessageFormat,
	})
	if err != nil {
		return nil, err
	}

	gateway, err := payment.New(&payment.Config{
		Provider:      cfg.Payment.Provider,
		SecretKey:     cfg.Payment.SecretKey,
		WebhookSecret: cfg.Payment.WebhookSecret,
	})
	if err != nil {
		return nil, err
	}

	uploader, err := oss.New(&oss.Config{
		Provider:        cfg.OSS.Provider,
		Endpoint:        cfg.OSS.Endpoint,
		AccessKeyID:     cfg.OSS.AccessKeyID,
		AccessKeySecret: cfg.OSS.AccessKeySecret,
		Bucket:          cfg.OSS.Bucket,
		Domain:          cfg.OSS.CustomDomain,
	})
	if err != nil {
		return nil, err
	}

	return &externals{
		sender:   sms.NewBreakerSender(sender, cfg.Breaker.Threshold, cfg.Breaker.CallTimeout(), m),
		gateway:  payment.NewBreakerGateway(gateway, cfg.Breaker.Threshold, cfg.Breaker.CallTimeout(), m),
		uploader: uploader,
	}, nil
}

// newHandlers 组装仓储、服务与处理器
func newHandlers(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	jwtManager *jwt.Manager,
	ext *externals,
	m *metrics.Metrics,
) *handlers {
	// 仓储
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)

	var locker lock.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Booking.LockTTL())
	}

	// 服务
	authSvc := authService.NewAuthService(userRepo, jwtManager, cfg.Crypto.BcryptCost)
	userSvc := userService.NewUserService(userRepo, cfg.Crypto.BcryptCost)
	roomSvc := roomService.NewRoomService(roomRepo, cache.New(redisClient), ext.uploader, m, roomService.Options{
		UploadDir:    cfg.OSS.UploadDir,
		MaxImageSize: cfg.OSS.MaxImageSize,
	})
	bookingSvc := bookingService.NewService(bookingRepo, roomRepo, userRepo, ext.sender, locker, m, bookingService.Options{
		OtpLength:  cfg.Booking.OtpLength,
		OtpTTL:     cfg.Booking.OtpTTL(),
		PassQRSize: cfg.Booking.PassQRSize,
	})
	paymentSvc := paymentService.NewService(bookingRepo, eventRepo, ext.gateway, cfg.Payment.Currency, m)

	return &handlers{
		auth:          authHandler.NewHandler(authSvc),
		user:          userHandler.NewHandler(userSvc),
		room:          roomHandler.NewHandler(roomSvc),
		booking:       bookingHandler.NewHandler(bookingSvc),
		payment:       paymentHandler.NewHandler(paymentSvc),
		adminBooking:  adminHandler.NewBookingHandler(adminService.NewBookingAdminService(bookingRepo, cfg.Booking.ExportMaxRows), bookingSvc),
		adminCustomer: adminHandler.NewCustomerHandler(adminService.NewCustomerAdminService(userRepo)),
		adminRoom:     adminHandler.NewRoomHandler(roomSvc),
	}
}

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
) error {
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	ext, err := newExternals(cfg, m)
	if err != nil {
		return err
	}
	h := newHandlers(cfg, db, redisClient, jwtManager, ext, m)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RealIP())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName, "/health", "/ready", cfg.Metrics.Path))
	}
	r.Use(middleware.Logging(middleware.DefaultLoggingConfig(logger)))
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, m.Handler())
	}
	r.Use(middleware.RequestSizeLimiter(cfg.Server.MaxBodySize))

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	rl := cfg.RateLimit
	if !rl.Enabled {
		redisClient = nil
	}
	bookingLimit := middleware.UserRateLimit(redisClient, "booking", rl.BookingLimit, time.Duration(rl.BookingWindow)*time.Second)
	otpLimit := middleware.UserRateLimit(redisClient, "otp", rl.OtpVerifyLimit, time.Duration(rl.BookingWindow)*time.Second)

	// API v1 路由组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.IPRateLimit(redisClient, rl.IPLimit, time.Duration(rl.IPWindow)*time.Second))
	{
		// 公开接口
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", h.auth.Signup)
			auth.POST("/login", h.auth.Login)
			auth.POST("/refresh", h.auth.RefreshToken)
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.room.ListRooms)
			rooms.GET("/:id", h.room.GetRoom)
			rooms.GET("/:id/availability", h.booking.CheckAvailability)
		}

		// 支付回调（验签，不需要认证）
		v1.POST("/payments/webhook", h.payment.Webhook)

		// 需要登录
		authed := v1.Group("")
		authed.Use(middleware.UserAuth(jwtManager))
		{
			user := authed.Group("/user")
			{
				user.GET("/profile", h.user.GetProfile)
				user.PUT("/profile", h.user.UpdateProfile)
				user.PUT("/password", h.user.ChangePassword)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.POST("", bookingLimit, h.booking.CreateBooking)
				bookings.GET("", h.booking.GetMyBookings)
				bookings.GET("/:id", h.booking.GetBooking)
				bookings.POST("/:id/verify-otp", otpLimit, h.booking.VerifyOtp)
				bookings.POST("/:id/cancel", h.booking.CancelBooking)
				bookings.POST("/:id/pay", h.payment.InitiatePayment)
				bookings.GET("/:id/pass", h.booking.GetBookingPass)
			}
		}
	}

	// 管理后台
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminAuth(jwtManager), middleware.AdminAudit(logger))
	{
		admin.GET("/bookings", h.adminBooking.ListBookings)
		admin.GET("/bookings/export", h.adminBooking.ExportBookings)
		admin.GET("/bookings/:id", h.adminBooking.GetBooking)
		admin.POST("/bookings/:id/cancel", h.adminBooking.CancelBooking)

		admin.GET("/customers", h.adminCustomer.ListCustomers)

		admin.POST("/rooms", h.adminRoom.CreateRoom)
		admin.PUT("/rooms/:id", h.adminRoom.UpdateRoom)
		admin.DELETE("/rooms/:id", h.adminRoom.DeleteRoom)
	}

	return nil
}
