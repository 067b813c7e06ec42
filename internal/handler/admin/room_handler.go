package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	roomService "github.com/dumeirei/hotel-booking-backend/internal/service/room"
)

// RoomHandler 房间管理处理器
type RoomHandler struct {
	roomService *roomService.RoomService
}

// NewRoomHandler 创建房间管理处理器
func NewRoomHandler(roomSvc *roomService.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomSvc}
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Description 支持 JSON 或 multipart/form-data，图片字段为 image
// @Tags 管理-房间
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param name formData string true "名称"
// @Param description formData string true "描述"
// @Param price formData number true "每晚价格"
// @Param capacity formData int true "最大入住人数"
// @Param available formData bool false "是否开放预订"
// @Param image formData file false "房间图片"
// @Success 201 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req roomService.RoomRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	image, closeFn, ok := formImage(c)
	if !ok {
		return
	}
	defer closeFn()

	room, err := h.roomService.CreateRoom(c.Request.Context(), &req, image)
	handler.MustCreate(c, err, room)
}

// UpdateRoom 更新房间
// @Summary 更新房间
// @Tags 管理-房间
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param name formData string true "名称"
// @Param description formData string true "描述"
// @Param price formData number true "每晚价格"
// @Param capacity formData int true "最大入住人数"
// @Param available formData bool false "是否开放预订"
// @Param image formData file false "房间图片"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/admin/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req roomService.RoomRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	image, closeFn, ok := formImage(c)
	if !ok {
		return
	}
	defer closeFn()

	room, err := h.roomService.UpdateRoom(c.Request.Context(), id, &req, image)
	handler.MustSucceed(c, err, room)
}

// DeleteRoom 删除房间
// @Summary 删除房间
// @Tags 管理-房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response
// @Router /api/admin/rooms/{id} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	if handler.HandleError(c, h.roomService.DeleteRoom(c.Request.Context(), id)) {
		return
	}
	response.SuccessWithMessage(c, "房间已删除", nil)
}

// formImage 读取可选的 image 文件字段
func formImage(c *gin.Context) (*roomService.ImageUpload, func(), bool) {
	noop := func() {}
	file, err := c.FormFile("image")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, noop, true
	}
	if err != nil {
		response.BadRequest(c, "图片读取失败")
		return nil, noop, false
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "图片读取失败")
		return nil, noop, false
	}
	return &roomService.ImageUpload{
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   f,
	}, func() { _ = f.Close() }, true
}
