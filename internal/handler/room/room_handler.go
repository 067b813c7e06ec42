// Package room 提供房间相关的 HTTP Handler
package room

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	roomService "github.com/dumeirei/hotel-booking-backend/internal/service/room"
)

// Handler 房间处理器
type Handler struct {
	roomService *roomService.RoomService
}

// NewHandler 创建房间处理器
func NewHandler(roomSvc *roomService.RoomService) *Handler {
	return &Handler{roomService: roomSvc}
}

// ListRooms 房间列表
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Param available query bool false "仅返回可预订房间"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	onlyAvailable := c.Query("available") == "true"
	rooms, err := h.roomService.ListRooms(c.Request.Context(), onlyAvailable)
	handler.MustSucceed(c, err, rooms)
}

// GetRoom 房间详情
// @Summary 房间详情
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}
