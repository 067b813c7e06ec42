// Package admin 提供管理后台服务
package admin

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
)

// BookingStore 预订查询
type BookingStore interface {
	GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error)
	List(ctx context.Context, filter repository.BookingFilter, offset, limit int) ([]*models.Booking, int64, error)
	ListForExport(ctx context.Context, filter repository.BookingFilter, max int) ([]*models.Booking, error)
}

// BookingAdminService 预订管理服务
type BookingAdminService struct {
	bookings      BookingStore
	exportMaxRows int
}

// NewBookingAdminService 创建预订管理服务
func NewBookingAdminService(bookings BookingStore, exportMaxRows int) *BookingAdminService {
	if exportMaxRows <= 0 {
		exportMaxRows = 10000
	}
	return &BookingAdminService{bookings: bookings, exportMaxRows: exportMaxRows}
}

// BookingListFilter 预订筛选条件
type BookingListFilter struct {
	Status string
	RoomID *int64
	Since  *time.Time // 仅返回此后创建的预订，供后台轮询新预订提醒
}

func (f BookingListFilter) toRepo() repository.BookingFilter {
	return repository.BookingFilter{RoomID: f.RoomID, Status: f.Status, Since: f.Since}
}

// ListBookings 预订列表
func (s *BookingAdminService) ListBookings(ctx context.Context, filter BookingListFilter, page utils.Pagination) ([]*bookingService.BookingInfo, int64, error) {
	page.Normalize()
	bookings, total, err := s.bookings.List(ctx, filter.toRepo(), page.GetOffset(), page.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return bookingService.ToBookingInfos(bookings), total, nil
}

// GetBooking 预订详情
func (s *BookingAdminService) GetBooking(ctx context.Context, id int64) (*bookingService.BookingInfo, error) {
	booking, err := s.bookings.GetByIDWithDetails(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return bookingService.ToBookingInfo(booking), nil
}

const exportSheet = "Bookings"

var exportHeaders = []interface{}{
	"Booking ID", "Booking No", "Check-in", "Check-out", "Status", "Guests",
	"Amount", "Room", "Room Price", "Guest Name", "Guest Email", "Created At",
}

// ExportBookings 导出预订为 xlsx
func (s *BookingAdminService) ExportBookings(ctx context.Context, filter BookingListFilter) (*bytes.Buffer, error) {
	bookings, err := s.bookings.ListForExport(ctx, filter.toRepo(), s.exportMaxRows)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	for i, b := range bookings {
		row := exportRow(bookingService.ToBookingInfo(b))
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, errors.ErrInternalError.WithError(err)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "L", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return buf, nil
}

// ExportFilename 导出文件名
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", now.Format("20060102_150405"))
}

func exportRow(b *bookingService.BookingInfo) []interface{} {
	var amount interface{} = ""
	if b.Amount != nil {
		amount = *b.Amount
	}
	return []interface{}{
		b.ID,
		b.BookingNo,
		b.CheckIn.Format("2006-01-02"),
		b.CheckOut.Format("2006-01-02"),
		b.Status,
		b.Guests,
		amount,
		b.RoomName,
		b.RoomPrice,
		b.UserName,
		b.UserEmail,
		b.CreatedAt.Format(time.RFC3339),
	}
}
