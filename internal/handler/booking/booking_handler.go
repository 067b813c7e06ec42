// Package booking 提供客房预订相关的 HTTP Handler
package booking

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
)

// Handler 预订处理器
type Handler struct {
	bookingService *bookingService.Service
}

// NewHandler 创建预订处理器
func NewHandler(bookingSvc *bookingService.Service) *Handler {
	return &Handler{bookingService: bookingSvc}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID   int64  `json:"room_id" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Guests   int    `json:"guests" binding:"required,min=1"`
}

// VerifyOtpRequest 验证码确认请求
type VerifyOtpRequest struct {
	Otp string `json:"otp" binding:"required"`
}

// CreateBooking 创建预订并发送验证码
// @Summary 创建预订
// @Description 创建待验证预订，验证码通过短信发送到账户手机号
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateBookingRequest true "请求参数"
// @Success 201 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	checkIn, err := handler.ParseDateOrTime(req.CheckIn)
	if err != nil {
		response.BadRequest(c, "入住日期格式错误")
		return
	}
	checkOut, err := handler.ParseDateOrTime(req.CheckOut)
	if err != nil {
		response.BadRequest(c, "离店日期格式错误")
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), userID, &bookingService.CreateBookingRequest{
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
	})
	handler.MustCreate(c, err, booking)
}

// VerifyOtp 验证码确认预订
// @Summary 验证码确认预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body VerifyOtpRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/bookings/{id}/verify-otp [post]
func (h *Handler) VerifyOtp(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	var req VerifyOtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	booking, err := h.bookingService.VerifyOtp(c.Request.Context(), userID, bookingID, req.Otp)
	handler.MustSucceed(c, err, booking)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Description 顾客只能取消待验证的预订
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	actor := bookingService.Actor{UserID: userID, Admin: middleware.IsAdmin(c)}
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), bookingID, actor)
	handler.MustSucceed(c, err, booking)
}

// GetMyBookings 我的预订列表
// @Summary 我的预订列表
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态" Enums(pending, confirmed, paid, cancelled)
// @Success 200 {object} response.Response{data=response.PageData{list=[]bookingService.BookingInfo}}
// @Router /api/v1/bookings [get]
func (h *Handler) GetMyBookings(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c)
	bookings, total, err := h.bookingService.ListMyBookings(c.Request.Context(), userID, c.Query("status"), p)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.PageSize)
}

// GetBooking 预订详情
// @Summary 预订详情
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/bookings/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), userID, bookingID)
	handler.MustSucceed(c, err, booking)
}

// GetBookingPass 入住凭证
// @Summary 入住凭证二维码
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingPass}
// @Router /api/v1/bookings/{id}/pass [get]
func (h *Handler) GetBookingPass(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	pass, err := h.bookingService.GetBookingPass(c.Request.Context(), userID, bookingID)
	handler.MustSucceed(c, err, pass)
}

// CheckAvailability 查询房间可用性
// @Summary 查询房间可用性
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Param check_in query string true "入住日期 YYYY-MM-DD"
// @Param check_out query string true "离店日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=bookingService.AvailabilityInfo}
// @Router /api/v1/rooms/{id}/availability [get]
func (h *Handler) CheckAvailability(c *gin.Context) {
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}
	checkIn, ok := handler.ParseRequiredQueryTime(c, "check_in", "入住日期格式错误")
	if !ok {
		return
	}
	checkOut, ok := handler.ParseRequiredQueryTime(c, "check_out", "离店日期格式错误")
	if !ok {
		return
	}

	info, err := h.bookingService.CheckAvailability(c.Request.Context(), roomID, checkIn, checkOut)
	handler.MustSucceed(c, err, info)
}
