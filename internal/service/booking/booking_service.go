// Package booking 提供预订生命周期服务
package booking

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/lock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

// BookingStore 预订持久化
type BookingStore interface {
	CreateWithin(ctx context.Context, booking *models.Booking, fn func(ctx context.Context) error) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error)
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
	UpdateIfStatus(ctx context.Context, id int64, from []string, fields map[string]interface{}) (bool, error)
	List(ctx context.Context, filter repository.BookingFilter, offset, limit int) ([]*models.Booking, int64, error)
}

// RoomReader 房间查询
type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
}

// UserReader 用户查询
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Options 预订参数
type Options struct {
	OtpLength  int
	OtpTTL     time.Duration
	PassQRSize int
}

// Service 预订服务
type Service struct {
	bookings BookingStore
	rooms    RoomReader
	users    UserReader
	sender   sms.Sender
	locker   lock.Locker
	metrics  *metrics.Metrics
	qr       *qrcode.Generator
	opts     Options
	now      func() time.Time
}

// NewService 创建预订服务，locker 为 nil 时不加房间锁
func NewService(
	bookings BookingStore,
	rooms RoomReader,
	users UserReader,
	sender sms.Sender,
	locker lock.Locker,
	m *metrics.Metrics,
	opts Options,
) *Service {
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if opts.OtpLength <= 0 {
		opts.OtpLength = 6
	}
	if opts.OtpTTL <= 0 {
		opts.OtpTTL = 10 * time.Minute
	}
	return &Service{
		bookings: bookings,
		rooms:    rooms,
		users:    users,
		sender:   sender,
		locker:   locker,
		metrics:  m,
		qr:       qrcode.NewGenerator(qrcode.WithSize(opts.PassQRSize)),
		opts:     opts,
		now:      time.Now,
	}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID   int64
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// Actor 操作者
type Actor struct {
	UserID int64
	Admin  bool
}

// CreateBooking 创建待验证预订并发送验证码
func (s *Service) CreateBooking(ctx context.Context, userID int64, req *CreateBookingRequest) (info *BookingInfo, err error) {
	ctx, span := tracing.Start(ctx, "booking.Create", tracing.WithUserID(userID), tracing.WithRoomID(req.RoomID))
	defer func() { tracing.End(span, err) }()

	if !req.CheckOut.After(req.CheckIn) {
		return nil, errors.ErrInvalidDateRange
	}
	if req.Guests < 1 {
		return nil, errors.ErrInvalidParams.WithMessage("入住人数至少为 1")
	}

	room, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.Available {
		return nil, errors.ErrRoomUnavailable
	}
	if req.Guests > room.Capacity {
		return nil, errors.ErrCapacityExceeded
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !user.HasPhone() {
		return nil, errors.ErrPhoneNotRegistered
	}

	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	conflict, err := s.bookings.HasOverlap(ctx, room.ID, req.CheckIn, req.CheckOut, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if conflict {
		return nil, errors.ErrDateConflict
	}

	otp := utils.GenerateRandomNumber(s.opts.OtpLength)
	sentAt := s.now()
	booking := &models.Booking{
		BookingNo: utils.GenerateBookingNo("B"),
		UserID:    userID,
		RoomID:    room.ID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
		Status:    models.BookingStatusPending,
		Otp:       &otp,
		OtpSentAt: &sentAt,
	}

	var sendErr error
	err = s.bookings.CreateWithin(ctx, booking, func(ctx context.Context) error {
		sendErr = s.sender.SendCode(ctx, *user.Phone, otp)
		return sendErr
	})
	if sendErr != nil {
		logger.Warn("otp dispatch failed, booking rolled back",
			logger.UserID(userID), logger.RoomID(room.ID), logger.Err(sendErr))
		return nil, errors.ErrSmsSendFail.WithError(sendErr)
	}
	if err != nil {
		// 验证码已送达但预订未落库，需人工跟进
		logger.Error("otp sent but booking commit failed",
			logger.UserID(userID), logger.RoomID(room.ID),
			zap.String("phone", crypto.MaskPhone(*user.Phone)), logger.Err(err))
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	s.metrics.RecordBooking(models.BookingStatusPending)
	logger.Info("booking created",
		logger.BookingID(booking.ID), logger.UserID(userID), logger.RoomID(room.ID))

	booking.Room = room
	return ToBookingInfo(booking), nil
}

// VerifyOtp 校验验证码并确认预订
func (s *Service) VerifyOtp(ctx context.Context, userID, bookingID int64, code string) (info *BookingInfo, err error) {
	ctx, span := tracing.Start(ctx, "booking.VerifyOtp", tracing.WithUserID(userID), tracing.WithBookingID(bookingID))
	defer func() { tracing.End(span, err) }()

	booking, err := s.getOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, errors.ErrInvalidTransition
	}
	if booking.Otp == nil || *booking.Otp != code {
		s.metrics.RecordOtpVerification("invalid")
		return nil, errors.ErrInvalidOtp
	}
	if booking.OtpSentAt == nil || s.now().Sub(*booking.OtpSentAt) > s.opts.OtpTTL {
		s.metrics.RecordOtpVerification("expired")
		return nil, errors.ErrOtpExpired
	}

	unlock, err := s.lockRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 两个待验证预订可能日期重叠，先确认者占用
	conflict, err := s.bookings.HasOverlap(ctx, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.ID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if conflict {
		return nil, errors.ErrDateConflict
	}

	ok, err := s.bookings.UpdateIfStatus(ctx, booking.ID,
		[]string{models.BookingStatusPending},
		map[string]interface{}{"status": models.BookingStatusConfirmed})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !ok {
		return nil, errors.ErrInvalidTransition
	}

	s.metrics.RecordOtpVerification("success")
	s.metrics.RecordBooking(models.BookingStatusConfirmed)
	logger.Info("booking confirmed", logger.BookingID(booking.ID), logger.UserID(userID))

	booking.Status = models.BookingStatusConfirmed
	return ToBookingInfo(booking), nil
}

// CancelBooking 取消预订：顾客仅可取消待验证预订，管理员可取消待验证或已确认预订
func (s *Service) CancelBooking(ctx context.Context, bookingID int64, actor Actor) (info *BookingInfo, err error) {
	ctx, span := tracing.Start(ctx, "booking.Cancel", tracing.WithUserID(actor.UserID), tracing.WithBookingID(bookingID))
	defer func() { tracing.End(span, err) }()

	var booking *models.Booking
	if actor.Admin {
		booking, err = s.getBooking(ctx, bookingID)
	} else {
		booking, err = s.getOwnedBooking(ctx, actor.UserID, bookingID)
	}
	if err != nil {
		return nil, err
	}

	from := CancellableFrom(actor)
	if !utils.Contains(from, booking.Status) {
		return nil, errors.ErrInvalidTransition
	}

	ok, err := s.bookings.UpdateIfStatus(ctx, booking.ID, from,
		map[string]interface{}{"status": models.BookingStatusCancelled})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !ok {
		return nil, errors.ErrInvalidTransition
	}

	s.metrics.RecordBooking(models.BookingStatusCancelled)
	logger.Info("booking cancelled",
		logger.BookingID(booking.ID), logger.UserID(actor.UserID), zap.Bool("by_admin", actor.Admin))

	booking.Status = models.BookingStatusCancelled
	return ToBookingInfo(booking), nil
}

// CancellableFrom 返回操作者可取消的预订状态
func CancellableFrom(actor Actor) []string {
	if actor.Admin {
		return []string{models.BookingStatusPending, models.BookingStatusConfirmed}
	}
	return []string{models.BookingStatusPending}
}

// CheckAvailability 房间在 [checkIn, checkOut) 内是否可预订
func (s *Service) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*AvailabilityInfo, error) {
	if !checkOut.After(checkIn) {
		return nil, errors.ErrInvalidDateRange
	}
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	info := &AvailabilityInfo{RoomID: roomID, CheckIn: checkIn, CheckOut: checkOut}
	if !room.Available {
		return info, nil
	}
	conflict, err := s.bookings.HasOverlap(ctx, roomID, checkIn, checkOut, 0)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	info.Available = !conflict
	return info, nil
}

// GetBooking 获取本人预订
func (s *Service) GetBooking(ctx context.Context, userID, bookingID int64) (*BookingInfo, error) {
	booking, err := s.bookings.GetByIDWithDetails(ctx, bookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if booking.UserID != userID {
		return nil, errors.ErrBookingNotFound
	}
	return ToBookingInfo(booking), nil
}

// ListMyBookings 获取本人预订列表
func (s *Service) ListMyBookings(ctx context.Context, userID int64, status string, page utils.Pagination) ([]*BookingInfo, int64, error) {
	page.Normalize()
	bookings, total, err := s.bookings.List(ctx, repository.BookingFilter{UserID: &userID, Status: status},
		page.GetOffset(), page.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return ToBookingInfos(bookings), total, nil
}

// GetBookingPass 获取入住凭证二维码，仅已确认或已支付的预订可用
func (s *Service) GetBookingPass(ctx context.Context, userID, bookingID int64) (*BookingPass, error) {
	booking, err := s.getOwnedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsBlocking() {
		return nil, errors.ErrBookingNotConfirmed
	}

	dataURL, err := s.qr.GenerateDataURL(booking.BookingNo)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return &BookingPass{
		BookingID: booking.ID,
		BookingNo: booking.BookingNo,
		Status:    booking.Status,
		QRCode:    dataURL,
	}, nil
}

func (s *Service) getRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

func (s *Service) getBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return booking, nil
}

// getOwnedBooking 他人预订按不存在处理
func (s *Service) getOwnedBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, errors.ErrBookingNotFound
	}
	return booking, nil
}

func (s *Service) lockRoom(ctx context.Context, roomID int64) (lock.Unlock, error) {
	unlock, err := s.locker.Lock(ctx, lock.RoomKey(roomID))
	if err != nil {
		if stderrors.Is(err, lock.ErrNotAcquired) {
			return nil, errors.ErrBookingBusy
		}
		return nil, errors.ErrCacheError.WithError(err)
	}
	return unlock, nil
}
