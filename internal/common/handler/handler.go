// Package handler 提供 API Handler 的通用辅助函数
// 统一错误处理、认证检查、参数解析
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
)

// HandleError 处理错误并发送适当的响应
// err 为 nil 返回 false；否则写入错误响应并返回 true，调用方应该 return
//
// 使用示例:
//
//	result, err := service.DoSomething()
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.IsAppError(err) {
		appErr := errors.GetAppError(err)
		response.Error(c, errors.HTTPStatus(appErr), appErr.Code, appErr.Message)
		return true
	}
	response.InternalError(c, "")
	return true
}

// MustSucceed 有错误则返回错误响应，否则返回成功响应
// 调用 MustSucceed 后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustCreate 创建类接口，成功返回 201
func MustCreate(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, data)
}

// MustSucceedPage 分页响应版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// RequireUserID 获取当前用户ID，如果未登录则返回401响应
//
//	userID, ok := handler.RequireUserID(c)
//	if !ok {
//	    return
//	}
func RequireUserID(c *gin.Context) (int64, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "请先登录")
		return 0, false
	}
	return userID, true
}

// ParseID 解析路径参数 "id" 为 int64
// 解析失败时已发送400响应
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID
// 参数为空返回 (nil, true)，解析失败返回 (nil, false) 且已发送400响应
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return nil, false
	}
	return &id, true
}

// 时间格式常量
const (
	DateFormat        = "2006-01-02"
	DateTimeFormatISO = time.RFC3339
)

// ParseDateOrTime 解析日期 (YYYY-MM-DD) 或 RFC3339 时间，统一转为 UTC
func ParseDateOrTime(s string) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormatISO, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, errors.ErrInvalidParams.WithMessage("时间格式错误")
	}
	return t, nil
}

// ParseQueryTime 从查询参数解析时间
// 参数为空返回 (nil, true)，解析失败返回 (nil, false) 且已发送400响应
func ParseQueryTime(c *gin.Context, paramName, errorMsg string) (*time.Time, bool) {
	s := c.Query(paramName)
	if s == "" {
		return nil, true
	}
	t, err := ParseDateOrTime(s)
	if err != nil {
		response.BadRequest(c, errorMsg)
		return nil, false
	}
	return &t, true
}

// ParseRequiredQueryTime 从查询参数解析必填时间
func ParseRequiredQueryTime(c *gin.Context, paramName, errorMsg string) (time.Time, bool) {
	t, ok := ParseQueryTime(c, paramName, errorMsg)
	if !ok {
		return time.Time{}, false
	}
	if t == nil {
		response.BadRequest(c, errorMsg)
		return time.Time{}, false
	}
	return *t, true
}

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, pageSize=10, 最大 pageSize=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	p.Normalize()
	return p
}

// RequireUserAndParseID 组合：检查用户登录 + 解析ID参数
//
//	userID, bookingID, ok := handler.RequireUserAndParseID(c, "预订")
//	if !ok {
//	    return
//	}
func RequireUserAndParseID(c *gin.Context, resourceName string) (userID, resourceID int64, ok bool) {
	userID, ok = RequireUserID(c)
	if !ok {
		return 0, 0, false
	}
	resourceID, ok = ParseID(c, resourceName)
	if !ok {
		return 0, 0, false
	}
	return userID, resourceID, true
}
