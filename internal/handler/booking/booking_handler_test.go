package booking

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	sender *sms.MockSender
	user   *models.User
	room   *models.Room
}

func setupServer(t *testing.T) *testServer {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.AutoMigrate(db))

	phone := "+12015550123"
	user := &models.User{Name: "Guest", Email: "guest@example.com", PasswordHash: "x", Phone: &phone, Role: models.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	room := &models.Room{Name: "Standard Room", Description: "Queen bed", Price: 100, Capacity: 2, Available: true}
	require.NoError(t, db.Create(room).Error)

	sender := sms.NewMockSender()
	svc := bookingService.NewService(
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		repository.NewUserRepository(db),
		sender, nil, nil,
		bookingService.Options{},
	)
	h := NewHandler(svc)

	r := gin.New()
	// 测试中以 X-User-ID 头模拟已登录用户
	r.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64); err == nil {
			c.Set(middleware.ContextKeyUserID, id)
			c.Set(middleware.ContextKeyUserType, jwt.UserTypeUser)
		}
		c.Next()
	})
	r.GET("/api/v1/rooms/:id/availability", h.CheckAvailability)
	r.POST("/api/v1/bookings", h.CreateBooking)
	r.GET("/api/v1/bookings", h.GetMyBookings)
	r.GET("/api/v1/bookings/:id", h.GetBooking)
	r.POST("/api/v1/bookings/:id/verify-otp", h.VerifyOtp)
	r.POST("/api/v1/bookings/:id/cancel", h.CancelBooking)
	r.GET("/api/v1/bookings/:id/pass", h.GetBookingPass)

	return &testServer{router: r, db: db, sender: sender, user: user, room: room}
}

func (s *testServer) do(t *testing.T, method, path string, userID int64, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *testServer) create(t *testing.T, checkIn, checkOut string, guests int) bookingService.BookingInfo {
	w, env := s.do(t, http.MethodPost, "/api/v1/bookings", s.user.ID, gin.H{
		"room_id": s.room.ID, "check_in": checkIn, "check_out": checkOut, "guests": guests,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var info bookingService.BookingInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	return info
}

func TestBookingHandler_CreateVerifyPass(t *testing.T) {
	s := setupServer(t)

	info := s.create(t, "2024-03-10", "2024-03-12", 2)
	assert.Equal(t, models.BookingStatusPending, info.Status)

	msg := s.sender.LastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "+12015550123", msg.Phone)

	// 响应中不包含验证码
	w, _ := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", info.ID), s.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), msg.Code)

	w, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/pass", info.ID), s.user.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrBookingNotConfirmed.Code, env.Code)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/verify-otp", info.ID), s.user.ID, gin.H{"otp": "000000x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrInvalidOtp.Code, env.Code)

	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/verify-otp", info.ID), s.user.ID, gin.H{"otp": msg.Code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed bookingService.BookingInfo
	require.NoError(t, json.Unmarshal(env.Data, &confirmed))
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/pass", info.ID), s.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pass bookingService.BookingPass
	require.NoError(t, json.Unmarshal(env.Data, &pass))
	assert.Equal(t, info.BookingNo, pass.BookingNo)
	assert.Contains(t, pass.QRCode, "data:image/png;base64,")

	// 已确认后该区间不可用
	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/availability?check_in=2024-03-11&check_out=2024-03-13", s.room.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail bookingService.AvailabilityInfo
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.False(t, avail.Available)

	// 半开区间：离店当天可入住
	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/availability?check_in=2024-03-12&check_out=2024-03-14", s.room.ID), 0, nil)
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.True(t, avail.Available)

	// 顾客不能取消已确认预订
	w, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", info.ID), s.user.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, env.Code)
}

func TestBookingHandler_CreateValidation(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name     string
		body     gin.H
		wantHTTP int
		wantCode int
	}{
		{"missing guests", gin.H{"room_id": s.room.ID, "check_in": "2024-03-10", "check_out": "2024-03-12"}, http.StatusBadRequest, 400},
		{"bad date", gin.H{"room_id": s.room.ID, "check_in": "10/03/2024", "check_out": "2024-03-12", "guests": 1}, http.StatusBadRequest, 400},
		{"reversed range", gin.H{"room_id": s.room.ID, "check_in": "2024-03-12", "check_out": "2024-03-10", "guests": 1}, http.StatusBadRequest, appErrors.ErrInvalidDateRange.Code},
		{"over capacity", gin.H{"room_id": s.room.ID, "check_in": "2024-03-10", "check_out": "2024-03-12", "guests": 3}, http.StatusBadRequest, appErrors.ErrCapacityExceeded.Code},
		{"unknown room", gin.H{"room_id": 999, "check_in": "2024-03-10", "check_out": "2024-03-12", "guests": 1}, http.StatusNotFound, appErrors.ErrRoomNotFound.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/v1/bookings", s.user.ID, tt.body)
			assert.Equal(t, tt.wantHTTP, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestBookingHandler_RequiresLogin(t *testing.T) {
	s := setupServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/bookings", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandler_ListAndCancel(t *testing.T) {
	s := setupServer(t)

	first := s.create(t, "2024-03-10", "2024-03-12", 1)
	s.create(t, "2024-04-10", "2024-04-12", 1)

	w, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", first.ID), s.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodGet, "/api/v1/bookings?status=cancelled", s.user.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		List  []bookingService.BookingInfo `json:"list"`
		Total int64                        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.List, 1)
	assert.Equal(t, first.ID, page.List[0].ID)

	// 他人的预订视为不存在
	other := &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, s.db.Create(other).Error)
	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", first.ID), other.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrBookingNotFound.Code, env.Code)
}

func TestBookingHandler_AvailabilityParams(t *testing.T) {
	s := setupServer(t)

	w, _ := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d/availability?check_in=2024-03-10", s.room.ID), 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/rooms/abc/availability?check_in=2024-03-10&check_out=2024-03-11", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
