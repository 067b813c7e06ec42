package booking

import (
	"time"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// BookingInfo 预订信息，不含验证码
type BookingInfo struct {
	ID              int64     `json:"id"`
	BookingNo       string    `json:"booking_no"`
	Status          string    `json:"status"`
	RoomID          int64     `json:"room_id"`
	RoomName        string    `json:"room_name,omitempty"`
	RoomPrice       float64   `json:"room_price,omitempty"`
	UserID          int64     `json:"user_id"`
	UserName        string    `json:"user_name,omitempty"`
	UserEmail       string    `json:"user_email,omitempty"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	Amount          *float64  `json:"amount,omitempty"`
	PaymentIntentID *string   `json:"payment_intent_id,omitempty"`
	PaymentStatus   *string   `json:"payment_status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AvailabilityInfo 可用性查询结果
type AvailabilityInfo struct {
	RoomID    int64     `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Available bool      `json:"available"`
}

// BookingPass 入住凭证
type BookingPass struct {
	BookingID int64  `json:"booking_id"`
	BookingNo string `json:"booking_no"`
	Status    string `json:"status"`
	QRCode    string `json:"qr_code"` // data:image/png;base64
}

// ToBookingInfo 转换为预订信息
func ToBookingInfo(b *models.Booking) *BookingInfo {
	info := &BookingInfo{
		ID:              b.ID,
		BookingNo:       b.BookingNo,
		Status:          b.Status,
		RoomID:          b.RoomID,
		UserID:          b.UserID,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		Guests:          b.Guests,
		Amount:          b.Amount,
		PaymentIntentID: b.PaymentIntentID,
		PaymentStatus:   b.PaymentStatus,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Room != nil {
		info.RoomName = b.Room.Name
		info.RoomPrice = b.Room.Price
	}
	if b.User != nil {
		info.UserName = b.User.Name
		info.UserEmail = b.User.Email
	}
	return info
}

// ToBookingInfos 批量转换
func ToBookingInfos(bookings []*models.Booking) []*BookingInfo {
	list := make([]*BookingInfo, 0, len(bookings))
	for _, b := range bookings {
		list = append(list, ToBookingInfo(b))
	}
	return list
}
