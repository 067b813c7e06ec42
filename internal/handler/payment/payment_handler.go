// Package payment 提供支付相关的 HTTP Handler
package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
)

// SignatureHeader 回调签名头
const SignatureHeader = "Stripe-Signature"

// maxWebhookBody 回调请求体上限
const maxWebhookBody = 64 << 10

// Handler 支付处理器
type Handler struct {
	paymentService *paymentService.Service
}

// NewHandler 创建支付处理器
func NewHandler(paymentSvc *paymentService.Service) *Handler {
	return &Handler{paymentService: paymentSvc}
}

// InitiatePayment 发起支付
// @Summary 发起支付
// @Description 为已确认的预订创建支付意图，返回前端确认支付所需的 client_secret
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=paymentService.PaymentInfo}
// @Router /api/v1/bookings/{id}/pay [post]
func (h *Handler) InitiatePayment(c *gin.Context) {
	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
	if !ok {
		return
	}

	info, err := h.paymentService.InitiatePayment(c.Request.Context(), userID, bookingID)
	handler.MustSucceed(c, err, info)
}

// Webhook 支付结果回调
// @Summary 支付结果回调
// @Tags 支付
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "签名"
// @Success 200 {object} map[string]bool
// @Router /api/v1/payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "读取请求体失败")
		return
	}

	if handler.HandleError(c, h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader))) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
