// Package payment 提供预订支付与回调对账服务
package payment

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/pkg/payment"
)

// BookingStore 预订持久化
type BookingStore interface {
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, ref string) (*models.Booking, error)
	UpdateIfStatus(ctx context.Context, id int64, from []string, fields map[string]interface{}) (bool, error)
}

// EventStore 回调事件持久化
type EventStore interface {
	Record(ctx context.Context, event *models.PaymentEvent) (bool, error)
	UpdateResult(ctx context.Context, eventID, result string, bookingID *int64) error
	GetByEventID(ctx context.Context, eventID string) (*models.PaymentEvent, error)
}

// Service 支付服务
type Service struct {
	bookings BookingStore
	events   EventStore
	gateway  payment.Gateway
	currency string
	metrics  *metrics.Metrics
}

// NewService 创建支付服务
func NewService(bookings BookingStore, events EventStore, gateway payment.Gateway, currency string, m *metrics.Metrics) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		bookings: bookings,
		events:   events,
		gateway:  gateway,
		currency: currency,
		metrics:  m,
	}
}

// PaymentInfo 发起支付结果
type PaymentInfo struct {
	BookingID    int64   `json:"booking_id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Nights       int     `json:"nights"`
}

// Quote 计算应付金额：房价 × 晚数
func Quote(price float64, checkIn, checkOut time.Time) (amount float64, nights int) {
	nights = utils.Nights(checkIn, checkOut)
	return utils.RoundMoney(price * float64(nights)), nights
}

// InitiatePayment 为已确认预订创建支付意图，金额按当前房价重新计算
func (s *Service) InitiatePayment(ctx context.Context, userID, bookingID int64) (info *PaymentInfo, err error) {
	ctx, span := tracing.Start(ctx, "payment.Initiate", tracing.WithUserID(userID), tracing.WithBookingID(bookingID))
	defer func() { tracing.End(span, err) }()

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
	if booking.Status != models.BookingStatusConfirmed {
		return nil, errors.ErrBookingNotConfirmed
	}
	if booking.Room == nil {
		return nil, errors.ErrRoomNotFound
	}

	amount, nights := Quote(booking.Room.Price, booking.CheckIn, booking.CheckOut)

	intent, err := s.gateway.CreateIntent(ctx, utils.ToMinorUnits(amount), s.currency, map[string]string{
		payment.MetadataBookingID: strconv.FormatInt(booking.ID, 10),
		"bookingNo":               booking.BookingNo,
	})
	if err != nil {
		logger.Warn("create payment intent failed", logger.BookingID(booking.ID), logger.Err(err))
		return nil, errors.ErrPaymentFailed.WithError(err)
	}

	ok, err := s.bookings.UpdateIfStatus(ctx, booking.ID,
		[]string{models.BookingStatusConfirmed},
		map[string]interface{}{"payment_intent_id": intent.Reference, "amount": amount})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !ok {
		logger.Warn("payment intent orphaned, booking left confirmed state",
			logger.BookingID(booking.ID), zap.String("reference", intent.Reference))
		return nil, errors.ErrInvalidTransition
	}

	logger.Info("payment intent created",
		logger.BookingID(booking.ID), zap.String("reference", intent.Reference), zap.Float64("amount", amount))

	return &PaymentInfo{
		BookingID:    booking.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     s.currency,
		Nights:       nights,
	}, nil
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	BookingID int64
	Applied   bool // 是否改变了预订
}

// ReconcilePaymentOutcome 按支付结果更新预订，重复投递幂等，已取消预订不会被改为已支付
func (s *Service) ReconcilePaymentOutcome(ctx context.Context, reference string, bookingHint int64, outcome payment.Outcome) (res *ReconcileResult, err error) {
	ctx, span := tracing.Start(ctx, "payment.Reconcile", tracing.WithBookingID(bookingHint))
	defer func() { tracing.End(span, err) }()

	if outcome != payment.OutcomeSucceeded && outcome != payment.OutcomeFailed {
		return &ReconcileResult{}, nil
	}

	booking, err := s.locate(ctx, reference, bookingHint, outcome)
	if err != nil {
		return nil, err
	}
	res = &ReconcileResult{BookingID: booking.ID}

	if outcome == payment.OutcomeFailed {
		ok, err := s.bookings.UpdateIfStatus(ctx, booking.ID,
			[]string{models.BookingStatusConfirmed},
			map[string]interface{}{"payment_status": models.PaymentStatusFailed})
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		res.Applied = ok
		logger.Info("payment failed", logger.BookingID(booking.ID), zap.Bool("applied", ok))
		return res, nil
	}

	switch booking.Status {
	case models.BookingStatusPaid:
		return res, nil
	case models.BookingStatusCancelled:
		logger.Warn("payment succeeded for cancelled booking", logger.BookingID(booking.ID), zap.String("reference", reference))
		return res, nil
	}

	fields := map[string]interface{}{
		"status":         models.BookingStatusPaid,
		"payment_status": models.PaymentStatusSucceeded,
	}
	// 记录实际扣款的支付意图
	if reference != "" && (booking.PaymentIntentID == nil || *booking.PaymentIntentID != reference) {
		fields["payment_intent_id"] = reference
	}
	ok, err := s.bookings.UpdateIfStatus(ctx, booking.ID, []string{models.BookingStatusConfirmed}, fields)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	res.Applied = ok
	if ok {
		s.metrics.RecordBooking(models.BookingStatusPaid)
		logger.Info("booking paid", logger.BookingID(booking.ID), zap.String("reference", reference))
	} else {
		logger.Warn("payment succeeded but booking not confirmed",
			logger.BookingID(booking.ID), zap.String("status", booking.Status))
	}
	return res, nil
}

// locate 先按支付流水号查找，找不到时回退到元数据中的预订 ID
func (s *Service) locate(ctx context.Context, reference string, bookingHint int64, outcome payment.Outcome) (*models.Booking, error) {
	if reference != "" {
		booking, err := s.bookings.GetByPaymentIntentID(ctx, reference)
		if err == nil {
			return booking, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}
	if bookingHint <= 0 {
		return nil, errors.ErrBookingNotFound
	}

	booking, err := s.bookings.GetByID(ctx, bookingHint)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if booking.PaymentIntentID != nil && reference != "" && *booking.PaymentIntentID != reference {
		// 被重新发起覆盖的旧意图：失败可忽略，成功说明已扣款，仍需入账
		if outcome != payment.OutcomeSucceeded {
			return nil, errors.ErrBookingNotFound
		}
		logger.Warn("payment succeeded on superseded intent",
			logger.BookingID(booking.ID), zap.String("reference", reference),
			zap.String("current", *booking.PaymentIntentID))
	}
	return booking, nil
}

// HandleWebhook 校验并处理支付回调，每个事件 ID 只生效一次
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		logger.Warn("payment webhook rejected", logger.Err(err))
		return errors.ErrWebhookSignature.WithError(err)
	}

	record := &models.PaymentEvent{
		EventID: ev.ID,
		Type:    ev.Type,
		Result:  models.PaymentEventReceived,
		Payload: datatypes.JSON(ev.Payload),
	}
	if ev.Reference != "" {
		record.Reference = &ev.Reference
	}
	if ev.BookingID > 0 {
		record.BookingID = &ev.BookingID
	}

	inserted, err := s.events.Record(ctx, record)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if !inserted {
		existing, err := s.events.GetByEventID(ctx, ev.ID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		// 上次处理中途失败的事件允许重放
		if existing.Result != models.PaymentEventReceived {
			s.metrics.RecordWebhookEvent(ev.Type, "duplicate")
			return nil
		}
	}

	if ev.Outcome == payment.OutcomeUnknown {
		s.metrics.RecordWebhookEvent(ev.Type, models.PaymentEventIgnored)
		return s.markEvent(ctx, ev.ID, models.PaymentEventIgnored, nil)
	}

	res, err := s.ReconcilePaymentOutcome(ctx, ev.Reference, ev.BookingID, ev.Outcome)
	if err != nil {
		if errors.Is(err, errors.ErrBookingNotFound) {
			logger.Warn("payment webhook for unknown booking",
				zap.String("event_id", ev.ID), zap.String("reference", ev.Reference))
			s.metrics.RecordWebhookEvent(ev.Type, models.PaymentEventIgnored)
			return s.markEvent(ctx, ev.ID, models.PaymentEventIgnored, nil)
		}
		return err
	}

	result := models.PaymentEventIgnored
	if res.Applied {
		result = models.PaymentEventApplied
	}
	s.metrics.RecordWebhookEvent(ev.Type, result)
	return s.markEvent(ctx, ev.ID, result, &res.BookingID)
}

func (s *Service) markEvent(ctx context.Context, eventID, result string, bookingID *int64) error {
	if err := s.events.UpdateResult(ctx, eventID, result, bookingID); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}
