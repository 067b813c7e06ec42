package admin

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	adminService "github.com/dumeirei/hotel-booking-backend/internal/service/admin"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
	roomService "github.com/dumeirei/hotel-booking-backend/internal/service/room"
	"github.com/dumeirei/hotel-booking-backend/pkg/oss"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	uploader *oss.MockUploader
	user     *models.User
	room     *models.Room
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

	user := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	room := &models.Room{Name: "Suite", Description: "-", Price: 250, Capacity: 4, Available: true}
	require.NoError(t, db.Create(room).Error)

	bookings := repository.NewBookingRepository(db)
	rooms := repository.NewRoomRepository(db)
	users := repository.NewUserRepository(db)
	bookingSvc := bookingService.NewService(bookings, rooms, users, sms.NewMockSender(), nil, nil, bookingService.Options{})
	uploader := oss.NewMockUploader()
	roomSvc := roomService.NewRoomService(rooms, nil, uploader, nil, roomService.Options{})

	bh := NewBookingHandler(adminService.NewBookingAdminService(bookings, 0), bookingSvc)
	ch := NewCustomerHandler(adminService.NewCustomerAdminService(users))
	rh := NewRoomHandler(roomSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, int64(1000))
		c.Next()
	})
	r.GET("/api/admin/bookings", bh.ListBookings)
	r.GET("/api/admin/bookings/export", bh.ExportBookings)
	r.GET("/api/admin/bookings/:id", bh.GetBooking)
	r.POST("/api/admin/bookings/:id/cancel", bh.CancelBooking)
	r.GET("/api/admin/customers", ch.ListCustomers)
	r.POST("/api/admin/rooms", rh.CreateRoom)
	r.PUT("/api/admin/rooms/:id", rh.UpdateRoom)
	r.DELETE("/api/admin/rooms/:id", rh.DeleteRoom)

	return &testServer{router: r, db: db, uploader: uploader, user: user, room: room}
}

func (s *testServer) book(t *testing.T, status string) *models.Booking {
	b := &models.Booking{
		BookingNo: utils.GenerateBookingNo("T"),
		UserID:    s.user.ID,
		RoomID:    s.room.ID,
		CheckIn:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:  time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Guests:    2,
		Status:    status,
	}
	require.NoError(t, s.db.Create(b).Error)
	return b
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestAdminBookingHandler_CancelConfirmed(t *testing.T) {
	s := setupServer(t)
	b := s.book(t, models.BookingStatusConfirmed)

	w := s.serve(httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/admin/bookings/%d/cancel", b.ID), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Booking
	require.NoError(t, s.db.First(&got, b.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, got.Status)

	// 已取消为终态
	w = s.serve(httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/admin/bookings/%d/cancel", b.ID), nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminBookingHandler_ListFilters(t *testing.T) {
	s := setupServer(t)
	s.book(t, models.BookingStatusConfirmed)
	s.book(t, models.BookingStatusPending)

	w := s.serve(httptest.NewRequest(http.MethodGet, "/api/admin/bookings?status=pending", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			List  []bookingService.BookingInfo `json:"list"`
			Total int64                        `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.EqualValues(t, 1, env.Data.Total)
	require.Len(t, env.Data.List, 1)
	assert.Equal(t, "alice@example.com", env.Data.List[0].UserEmail)

	w = s.serve(httptest.NewRequest(http.MethodGet, "/api/admin/bookings?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.serve(httptest.NewRequest(http.MethodGet, "/api/admin/bookings?room_id=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminBookingHandler_Export(t *testing.T) {
	s := setupServer(t)
	s.book(t, models.BookingStatusPaid)

	w := s.serve(httptest.NewRequest(http.MethodGet, "/api/admin/bookings/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestAdminCustomerHandler_List(t *testing.T) {
	s := setupServer(t)
	s.book(t, models.BookingStatusConfirmed)

	w := s.serve(httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			List []adminService.CustomerInfo `json:"list"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data.List, 1)
	require.Len(t, env.Data.List[0].Bookings, 1)
	assert.Equal(t, "Suite", env.Data.List[0].Bookings[0].RoomName)
}

// pngHeader 最小 PNG 文件头，足以通过内容类型检测
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestAdminRoomHandler_CreateWithImage(t *testing.T) {
	s := setupServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "Deluxe Room"))
	require.NoError(t, mw.WriteField("description", "King bed"))
	require.NoError(t, mw.WriteField("price", "150"))
	require.NoError(t, mw.WriteField("capacity", "2"))
	require.NoError(t, mw.WriteField("available", "true"))
	part, err := mw.CreateFormFile("image", "deluxe.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/rooms", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.serve(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env struct {
		Data models.Room `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Deluxe Room", env.Data.Name)
	require.NotNil(t, env.Data.ImageURL)
	assert.Contains(t, *env.Data.ImageURL, "https://mock-oss.example.com/rooms/")
	assert.Equal(t, 1, s.uploader.Len())
}

func TestAdminRoomHandler_UpdateJSONAndDelete(t *testing.T) {
	s := setupServer(t)

	body := `{"name":"Suite","description":"Renovated","price":275,"capacity":4,"available":false}`
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/admin/rooms/%d", s.room.ID), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := s.serve(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Room
	require.NoError(t, s.db.First(&got, s.room.ID).Error)
	assert.Equal(t, 275.0, got.Price)
	assert.False(t, got.Available)

	s.book(t, models.BookingStatusConfirmed)
	w = s.serve(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/rooms/%d", s.room.ID), nil))
	assert.Equal(t, http.StatusConflict, w.Code)
}
