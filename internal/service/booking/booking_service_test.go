// Package booking 预订服务单元测试
package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/lock"
	applog "github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

const testPhone = "+12015550123"

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

type testEnv struct {
	svc    *Service
	db     *gorm.DB
	sender *sms.MockSender
	now    time.Time
	user   *models.User
	room   *models.Room
}

func setupTestService(t *testing.T, locker lock.Locker) *testEnv {
	db := setupTestDB(t)
	sender := sms.NewMockSender()
	svc := NewService(
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		repository.NewUserRepository(db),
		sender,
		locker,
		nil,
		Options{OtpLength: 6, OtpTTL: 10 * time.Minute},
	)

	env := &testEnv{svc: svc, db: db, sender: sender, now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return env.now }

	phone := testPhone
	env.user = &models.User{Name: "Guest", Email: "guest@example.com", PasswordHash: "x", Phone: &phone}
	require.NoError(t, db.Create(env.user).Error)
	env.room = &models.Room{Name: "Standard Room", Description: "Queen bed", Price: 100, Capacity: 2, Available: true}
	require.NoError(t, db.Create(env.room).Error)
	return env
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) insertBooking(t *testing.T, userID int64, in, out time.Time, status string) *models.Booking {
	b := &models.Booking{
		BookingNo: utils.GenerateBookingNo("T"),
		UserID:    userID,
		RoomID:    e.room.ID,
		CheckIn:   in,
		CheckOut:  out,
		Guests:    1,
		Status:    status,
	}
	require.NoError(t, e.db.Create(b).Error)
	return b
}

func (e *testEnv) reload(t *testing.T, id int64) *models.Booking {
	var b models.Booking
	require.NoError(t, e.db.First(&b, id).Error)
	return &b
}

func (e *testEnv) create(t *testing.T, in, out time.Time) *BookingInfo {
	info, err := e.svc.CreateBooking(context.Background(), e.user.ID, &CreateBookingRequest{
		RoomID: e.room.ID, CheckIn: in, CheckOut: out, Guests: 2,
	})
	require.NoError(t, err)
	return info
}

func TestCreateBooking_Success(t *testing.T) {
	env := setupTestService(t, nil)

	info := env.create(t, day(1, 10), day(1, 13))
	assert.Equal(t, models.BookingStatusPending, info.Status)
	assert.Equal(t, "Standard Room", info.RoomName)
	assert.Nil(t, info.Amount)

	stored := env.reload(t, info.ID)
	require.NotNil(t, stored.Otp)
	assert.Len(t, *stored.Otp, 6)
	require.NotNil(t, stored.OtpSentAt)
	assert.True(t, stored.OtpSentAt.Equal(env.now))

	msg := env.sender.LastMessage()
	require.NotNil(t, msg)
	assert.Equal(t, testPhone, msg.Phone)
	assert.Equal(t, *stored.Otp, msg.Code)
}

func TestCreateBooking_Validation(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()

	closed := &models.Room{Name: "Closed", Description: "-", Price: 80, Capacity: 2, Available: false}
	require.NoError(t, env.db.Create(closed).Error)
	noPhone := &models.User{Name: "NoPhone", Email: "nophone@example.com", PasswordHash: "x"}
	require.NoError(t, env.db.Create(noPhone).Error)

	tests := []struct {
		name    string
		userID  int64
		req     CreateBookingRequest
		wantErr error
	}{
		{"checkout equals checkin", env.user.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 10), Guests: 1}, appErrors.ErrInvalidDateRange},
		{"checkout before checkin", env.user.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 9), Guests: 1}, appErrors.ErrInvalidDateRange},
		{"room missing", env.user.ID, CreateBookingRequest{RoomID: 999, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: 1}, appErrors.ErrRoomNotFound},
		{"room unavailable", env.user.ID, CreateBookingRequest{RoomID: closed.ID, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: 1}, appErrors.ErrRoomUnavailable},
		{"zero guests", env.user.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: 0}, appErrors.ErrInvalidParams},
		{"negative guests", env.user.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: -2}, appErrors.ErrInvalidParams},
		{"too many guests", env.user.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: 3}, appErrors.ErrCapacityExceeded},
		{"no phone on file", noPhone.ID, CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 11), Guests: 1}, appErrors.ErrPhoneNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.svc.CreateBooking(ctx, tt.userID, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	env.db.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, env.sender.Messages())
}

func TestCreateBooking_DateConflict(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()
	other := &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, env.db.Create(other).Error)

	env.insertBooking(t, other.ID, day(1, 10), day(1, 15), models.BookingStatusConfirmed)
	env.insertBooking(t, other.ID, day(2, 1), day(2, 5), models.BookingStatusPending)
	env.insertBooking(t, other.ID, day(3, 1), day(3, 5), models.BookingStatusCancelled)

	_, err := env.svc.CreateBooking(ctx, env.user.ID, &CreateBookingRequest{RoomID: env.room.ID, CheckIn: day(1, 14), CheckOut: day(1, 16), Guests: 1})
	assert.ErrorIs(t, err, appErrors.ErrDateConflict)

	// 半开区间：退房日与入住日相同不冲突
	env.create(t, day(1, 15), day(1, 17))
	env.create(t, day(2, 2), day(2, 4))
	env.create(t, day(3, 2), day(3, 3))
}

func TestCreateBooking_SmsFailureRollsBack(t *testing.T) {
	env := setupTestService(t, nil)
	env.sender.FailWith(errors.New("gateway unavailable"))

	_, err := env.svc.CreateBooking(context.Background(), env.user.ID, &CreateBookingRequest{
		RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 12), Guests: 1,
	})
	assert.ErrorIs(t, err, appErrors.ErrSmsSendFail)

	var count int64
	env.db.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateBooking_RoomLocked(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := setupTestService(t, lock.NewRedisLocker(client, time.Minute))

	holder := lock.NewRedisLocker(client, time.Minute)
	unlock, err := holder.Lock(context.Background(), lock.RoomKey(env.room.ID))
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(context.Background(), env.user.ID, &CreateBookingRequest{
		RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 12), Guests: 1,
	})
	assert.ErrorIs(t, err, appErrors.ErrBookingBusy)

	unlock()
	env.create(t, day(1, 10), day(1, 12))
}

func TestVerifyOtp(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()

	info := env.create(t, day(1, 10), day(1, 13))
	code := env.sender.LastMessage().Code

	_, err := env.svc.VerifyOtp(ctx, env.user.ID, info.ID, wrongCode(code))
	assert.ErrorIs(t, err, appErrors.ErrInvalidOtp)

	_, err = env.svc.VerifyOtp(ctx, env.user.ID+100, info.ID, code)
	assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)

	_, err = env.svc.VerifyOtp(ctx, env.user.ID, 9999, code)
	assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)

	env.now = env.now.Add(10 * time.Minute)
	confirmed, err := env.svc.VerifyOtp(ctx, env.user.ID, info.ID, code)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, models.BookingStatusConfirmed, env.reload(t, info.ID).Status)

	// 一次性：确认后任何验证码都不再接受
	_, err = env.svc.VerifyOtp(ctx, env.user.ID, info.ID, code)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestVerifyOtp_Expired(t *testing.T) {
	env := setupTestService(t, nil)

	info := env.create(t, day(1, 10), day(1, 13))
	code := env.sender.LastMessage().Code

	env.now = env.now.Add(11 * time.Minute)
	_, err := env.svc.VerifyOtp(context.Background(), env.user.ID, info.ID, code)
	assert.ErrorIs(t, err, appErrors.ErrOtpExpired)
	assert.Equal(t, models.BookingStatusPending, env.reload(t, info.ID).Status)
}

func TestVerifyOtp_PendingRace(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()

	first := env.create(t, day(1, 10), day(1, 13))
	firstCode := env.sender.LastMessage().Code
	second := env.create(t, day(1, 12), day(1, 14))
	secondCode := env.sender.LastMessage().Code

	_, err := env.svc.VerifyOtp(ctx, env.user.ID, second.ID, secondCode)
	require.NoError(t, err)

	_, err = env.svc.VerifyOtp(ctx, env.user.ID, first.ID, firstCode)
	assert.ErrorIs(t, err, appErrors.ErrDateConflict)
	assert.Equal(t, models.BookingStatusPending, env.reload(t, first.ID).Status)
}

func TestCancelBooking(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()
	guest := Actor{UserID: env.user.ID}
	admin := Actor{UserID: 9000, Admin: true}

	tests := []struct {
		name    string
		status  string
		actor   Actor
		wantErr error
	}{
		{"guest cancels pending", models.BookingStatusPending, guest, nil},
		{"guest cannot cancel confirmed", models.BookingStatusConfirmed, guest, appErrors.ErrInvalidTransition},
		{"guest cannot cancel paid", models.BookingStatusPaid, guest, appErrors.ErrInvalidTransition},
		{"admin cancels pending", models.BookingStatusPending, admin, nil},
		{"admin cancels confirmed", models.BookingStatusConfirmed, admin, nil},
		{"admin cannot cancel paid", models.BookingStatusPaid, admin, appErrors.ErrInvalidTransition},
		{"admin cannot cancel cancelled", models.BookingStatusCancelled, admin, appErrors.ErrInvalidTransition},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := day(4, 1).AddDate(0, 0, i*3)
			b := env.insertBooking(t, env.user.ID, in, in.AddDate(0, 0, 2), tt.status)

			info, err := env.svc.CancelBooking(ctx, b.ID, tt.actor)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, env.reload(t, b.ID).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.BookingStatusCancelled, info.Status)
			assert.Equal(t, models.BookingStatusCancelled, env.reload(t, b.ID).Status)
		})
	}
}

func TestCancelBooking_OtherGuest(t *testing.T) {
	env := setupTestService(t, nil)
	b := env.insertBooking(t, env.user.ID, day(1, 1), day(1, 2), models.BookingStatusPending)

	_, err := env.svc.CancelBooking(context.Background(), b.ID, Actor{UserID: env.user.ID + 1})
	assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
}

func TestCheckAvailability(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()
	env.insertBooking(t, env.user.ID, day(1, 10), day(1, 15), models.BookingStatusPaid)

	got, err := env.svc.CheckAvailability(ctx, env.room.ID, day(1, 14), day(1, 16))
	require.NoError(t, err)
	assert.False(t, got.Available)

	got, err = env.svc.CheckAvailability(ctx, env.room.ID, day(1, 15), day(1, 17))
	require.NoError(t, err)
	assert.True(t, got.Available)

	require.NoError(t, env.db.Model(env.room).Update("available", false).Error)
	got, err = env.svc.CheckAvailability(ctx, env.room.ID, day(1, 15), day(1, 17))
	require.NoError(t, err)
	assert.False(t, got.Available)

	_, err = env.svc.CheckAvailability(ctx, env.room.ID, day(1, 17), day(1, 15))
	assert.ErrorIs(t, err, appErrors.ErrInvalidDateRange)
	_, err = env.svc.CheckAvailability(ctx, 999, day(1, 15), day(1, 17))
	assert.ErrorIs(t, err, appErrors.ErrRoomNotFound)
}

func TestGetBookingPass(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()

	pending := env.insertBooking(t, env.user.ID, day(1, 1), day(1, 2), models.BookingStatusPending)
	_, err := env.svc.GetBookingPass(ctx, env.user.ID, pending.ID)
	assert.ErrorIs(t, err, appErrors.ErrBookingNotConfirmed)

	paid := env.insertBooking(t, env.user.ID, day(1, 3), day(1, 4), models.BookingStatusPaid)
	pass, err := env.svc.GetBookingPass(ctx, env.user.ID, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, paid.BookingNo, pass.BookingNo)
	assert.True(t, strings.HasPrefix(pass.QRCode, "data:image/png;base64,"))
}

func TestGetAndListMyBookings(t *testing.T) {
	env := setupTestService(t, nil)
	ctx := context.Background()
	other := &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, env.db.Create(other).Error)

	mine := env.insertBooking(t, env.user.ID, day(1, 1), day(1, 2), models.BookingStatusPending)
	env.insertBooking(t, env.user.ID, day(1, 3), day(1, 4), models.BookingStatusPaid)
	theirs := env.insertBooking(t, other.ID, day(1, 5), day(1, 6), models.BookingStatusPending)

	got, err := env.svc.GetBooking(ctx, env.user.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standard Room", got.RoomName)

	_, err = env.svc.GetBooking(ctx, env.user.ID, theirs.ID)
	assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)

	list, total, err := env.svc.ListMyBookings(ctx, env.user.ID, "", utils.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = env.svc.ListMyBookings(ctx, env.user.ID, models.BookingStatusPaid, utils.Pagination{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.BookingStatusPaid, list[0].Status)
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

// commitFailStore 回调执行后提交失败
type commitFailStore struct {
	*repository.BookingRepository
}

func (s *commitFailStore) CreateWithin(ctx context.Context, booking *models.Booking, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errors.New("commit: connection reset")
}

func TestCreateBooking_CommitFailsAfterSend(t *testing.T) {
	env := setupTestService(t, nil)
	core, logs := observer.New(zapcore.ErrorLevel)
	applog.SetLogger(zap.New(core))

	svc := NewService(
		&commitFailStore{BookingRepository: repository.NewBookingRepository(env.db)},
		repository.NewRoomRepository(env.db),
		repository.NewUserRepository(env.db),
		env.sender, nil, nil,
		Options{OtpLength: 6, OtpTTL: 10 * time.Minute},
	)

	_, err := svc.CreateBooking(context.Background(), env.user.ID, &CreateBookingRequest{
		RoomID: env.room.ID, CheckIn: day(1, 10), CheckOut: day(1, 12), Guests: 1,
	})
	assert.ErrorIs(t, err, appErrors.ErrDatabaseError)
	require.NotNil(t, env.sender.LastMessage())

	entries := logs.FilterMessage("otp sent but booking commit failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, env.user.ID, fields["user_id"])
	assert.NotEqual(t, testPhone, fields["phone"])
	assert.NotEmpty(t, fields["phone"])
}
