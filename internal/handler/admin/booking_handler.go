// Package admin 提供管理后台的 HTTP Handler
package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	adminService "github.com/dumeirei/hotel-booking-backend/internal/service/admin"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingHandler 预订管理处理器
type BookingHandler struct {
	adminService   *adminService.BookingAdminService
	bookingService *bookingService.Service
}

// NewBookingHandler 创建预订管理处理器
func NewBookingHandler(adminSvc *adminService.BookingAdminService, bookingSvc *bookingService.Service) *BookingHandler {
	return &BookingHandler{adminService: adminSvc, bookingService: bookingSvc}
}

// bindFilter 解析 status、room_id、since 查询参数
func bindFilter(c *gin.Context) (adminService.BookingListFilter, bool) {
	filter := adminService.BookingListFilter{Status: c.Query("status")}

	roomID, ok := handler.ParseQueryID(c, "room_id", "房间")
	if !ok {
		return filter, false
	}
	filter.RoomID = roomID

	since, ok := handler.ParseQueryTime(c, "since", "since 时间格式错误")
	if !ok {
		return filter, false
	}
	filter.Since = since
	return filter, true
}

// ListBookings 预订列表
// @Summary 预订列表
// @Tags 管理-预订
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Param room_id query int false "房间ID"
// @Param since query string false "仅返回此时间之后创建的预订 (RFC3339)"
// @Success 200 {object} response.Response{data=response.PageData{list=[]bookingService.BookingInfo}}
// @Router /api/admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	list, total, err := h.adminService.ListBookings(c.Request.Context(), filter, p)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}

// GetBooking 预订详情
// @Summary 预订详情
// @Tags 管理-预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.adminService.GetBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, booking)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Description 管理员可以取消待验证或已确认的预订
// @Tags 管理-预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/admin/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	adminID, id, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), id, bookingService.Actor{UserID: adminID, Admin: true})
	handler.MustSucceed(c, err, booking)
}

// ExportBookings 导出预订
// @Summary 导出预订 (xlsx)
// @Tags 管理-预订
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security Bearer
// @Param status query string false "状态"
// @Param room_id query int false "房间ID"
// @Param since query string false "仅导出此时间之后创建的预订"
// @Success 200 {file} file
// @Router /api/admin/bookings/export [get]
func (h *BookingHandler) ExportBookings(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	buf, err := h.adminService.ExportBookings(c.Request.Context(), filter)
	if handler.HandleError(c, err) {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+adminService.ExportFilename(time.Now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
