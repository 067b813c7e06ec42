package admin

import (
	"context"
	"time"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// CustomerStore 顾客查询
type CustomerStore interface {
	ListCustomers(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
}

// CustomerAdminService 顾客管理服务
type CustomerAdminService struct {
	users CustomerStore
}

// NewCustomerAdminService 创建顾客管理服务
func NewCustomerAdminService(users CustomerStore) *CustomerAdminService {
	return &CustomerAdminService{users: users}
}

// CustomerInfo 顾客信息
type CustomerInfo struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Email     string                 `json:"email"`
	Phone     *string                `json:"phone,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	Bookings  []*CustomerBookingInfo `json:"bookings"`
}

// CustomerBookingInfo 顾客预订摘要
type CustomerBookingInfo struct {
	ID       int64     `json:"id"`
	RoomName string    `json:"room_name"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Status   string    `json:"status"`
	Amount   *float64  `json:"amount,omitempty"`
}

// ListCustomers 顾客列表及其预订
func (s *CustomerAdminService) ListCustomers(ctx context.Context, page utils.Pagination) ([]*CustomerInfo, int64, error) {
	page.Normalize()
	users, total, err := s.users.ListCustomers(ctx, page.GetOffset(), page.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*CustomerInfo, 0, len(users))
	for _, u := range users {
		info := &CustomerInfo{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Phone:     u.Phone,
			CreatedAt: u.CreatedAt,
			Bookings:  make([]*CustomerBookingInfo, 0, len(u.Bookings)),
		}
		for _, b := range u.Bookings {
			cb := &CustomerBookingInfo{
				ID:       b.ID,
				CheckIn:  b.CheckIn,
				CheckOut: b.CheckOut,
				Status:   b.Status,
				Amount:   b.Amount,
			}
			if b.Room != nil {
				cb.RoomName = b.Room.Name
			}
			info.Bookings = append(info.Bookings, cb)
		}
		list = append(list, info)
	}
	return list, total, nil
}
