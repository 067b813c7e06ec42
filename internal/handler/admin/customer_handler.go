package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	adminService "github.com/dumeirei/hotel-booking-backend/internal/service/admin"
)

// CustomerHandler 顾客管理处理器
type CustomerHandler struct {
	customerService *adminService.CustomerAdminService
}

// NewCustomerHandler 创建顾客管理处理器
func NewCustomerHandler(customerSvc *adminService.CustomerAdminService) *CustomerHandler {
	return &CustomerHandler{customerService: customerSvc}
}

// ListCustomers 顾客列表
// @Summary 顾客列表及预订
// @Tags 管理-顾客
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]adminService.CustomerInfo}}
// @Router /api/admin/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := handler.BindPagination(c)
	list, total, err := h.customerService.ListCustomers(c.Request.Context(), p)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PageSize)
}
