// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，WithMessage/WithError 派生的错误与原错误视为同类
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrExternalService = New(1007, "外部服务错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrFileUploadError = New(1011, "文件上传失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrTokenRefreshFail = New(2003, "刷新令牌失败")
	ErrPermissionDenied = New(2004, "权限不足")
	ErrPasswordError    = New(2007, "邮箱或密码错误")
	ErrSmsSendFail      = New(2011, "短信发送失败，请稍后重试")
)

// 用户错误码 (3000-3999)
var (
	ErrUserNotFound        = New(3000, "用户不存在")
	ErrUserExists          = New(3001, "该邮箱已注册")
	ErrPhoneInvalid        = New(3002, "无效的手机号")
	ErrPhoneNotRegistered  = New(3003, "用户未绑定手机号，无法发送验证码")
	ErrPasswordTooShort    = New(3004, "密码长度不能少于6位")
	ErrOldPasswordMismatch = New(3005, "当前密码不正确")
)

// 支付错误码 (6000-6999)
var (
	ErrPaymentFailed        = New(6001, "创建支付失败，请稍后重试")
	ErrPaymentCallbackError = New(6007, "支付回调错误")
	ErrWebhookSignature     = New(6008, "支付回调签名校验失败")
)

// 预订错误码 (8000-8999)
var (
	ErrBookingNotFound     = New(8000, "预订不存在")
	ErrInvalidTransition   = New(8001, "当前预订状态不允许该操作")
	ErrDateConflict        = New(8002, "所选日期已被预订")
	ErrRoomNotFound        = New(8003, "房间不存在")
	ErrRoomUnavailable     = New(8004, "房间暂不可预订")
	ErrInvalidDateRange    = New(8005, "退房日期必须晚于入住日期")
	ErrCapacityExceeded    = New(8006, "入住人数超过房间容量")
	ErrInvalidOtp          = New(8007, "验证码错误")
	ErrOtpExpired          = New(8008, "验证码已过期")
	ErrBookingNotConfirmed = New(8009, "预订未确认，无法发起支付")
	ErrRoomInUse           = New(8010, "房间存在有效预订，无法删除")
	ErrBookingBusy         = New(8011, "房间正在被预订，请稍后重试")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// Is 判断 err 是否属于 target 错误码
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// HTTPStatus 返回错误码对应的 HTTP 状态码
func HTTPStatus(err error) int {
	appErr := GetAppError(err)
	switch appErr.Code {
	case ErrInvalidParams.Code, ErrPhoneInvalid.Code, ErrPasswordTooShort.Code,
		ErrInvalidDateRange.Code, ErrCapacityExceeded.Code, ErrInvalidOtp.Code,
		ErrOtpExpired.Code, ErrPhoneNotRegistered.Code, ErrWebhookSignature.Code,
		ErrOldPasswordMismatch.Code, ErrRoomUnavailable.Code:
		return http.StatusBadRequest
	case ErrUnauthorized.Code, ErrTokenExpired.Code, ErrTokenInvalid.Code,
		ErrTokenRefreshFail.Code, ErrPasswordError.Code:
		return http.StatusUnauthorized
	case ErrPermissionDenied.Code:
		return http.StatusForbidden
	case ErrNotFound.Code, ErrUserNotFound.Code, ErrBookingNotFound.Code, ErrRoomNotFound.Code:
		return http.StatusNotFound
	case ErrAlreadyExists.Code, ErrUserExists.Code, ErrDateConflict.Code,
		ErrInvalidTransition.Code, ErrBookingNotConfirmed.Code, ErrRoomInUse.Code,
		ErrBookingBusy.Code:
		return http.StatusConflict
	case ErrRateLimitExceed.Code:
		return http.StatusTooManyRequests
	case ErrSmsSendFail.Code, ErrPaymentFailed.Code, ErrExternalService.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
