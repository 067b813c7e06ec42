// Package errors 错误码和错误处理单元测试
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "without underlying error",
			appError: New(1001, "参数错误"),
			want:     "[1001] 参数错误",
		},
		{
			name:     "with underlying error",
			appError: Wrap(1004, "数据库错误", stderrors.New("connection timeout")),
			want:     "[1004] 数据库错误: connection timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_WithMessageKeepsOriginal(t *testing.T) {
	modified := ErrInvalidParams.WithMessage("入住日期格式错误")

	assert.Equal(t, ErrInvalidParams.Code, modified.Code)
	assert.Equal(t, "入住日期格式错误", modified.Message)
	assert.Equal(t, "参数错误", ErrInvalidParams.Message)
}

func TestAppError_WithError(t *testing.T) {
	cause := stderrors.New("sms gateway timeout")
	err := ErrSmsSendFail.WithError(cause)

	assert.Equal(t, ErrSmsSendFail.Code, err.Code)
	assert.True(t, stderrors.Is(err, cause))
	assert.Nil(t, ErrSmsSendFail.Err)
}

func TestIs_MatchesByCode(t *testing.T) {
	derived := ErrDateConflict.WithMessage("2024-01-14 已被预订")

	assert.True(t, Is(derived, ErrDateConflict))
	assert.False(t, Is(derived, ErrCapacityExceeded))
	assert.True(t, Is(fmt.Errorf("create booking: %w", derived), ErrDateConflict))
}

func TestGetAppError(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		got := GetAppError(fmt.Errorf("wrapped: %w", ErrOtpExpired))
		require.NotNil(t, got)
		assert.Equal(t, ErrOtpExpired.Code, got.Code)
	})

	t.Run("plain error becomes unknown", func(t *testing.T) {
		cause := stderrors.New("boom")
		got := GetAppError(cause)
		assert.Equal(t, ErrUnknown.Code, got.Code)
		assert.Equal(t, cause, got.Err)
	})
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrBookingNotFound))
	assert.False(t, IsAppError(stderrors.New("x")))
}

func TestBookingCodesAreDistinct(t *testing.T) {
	codes := []*AppError{
		ErrBookingNotFound, ErrInvalidTransition, ErrDateConflict, ErrRoomNotFound,
		ErrRoomUnavailable, ErrInvalidDateRange, ErrCapacityExceeded, ErrInvalidOtp,
		ErrOtpExpired, ErrBookingNotConfirmed, ErrRoomInUse, ErrBookingBusy,
		ErrPhoneNotRegistered, ErrSmsSendFail, ErrPaymentFailed,
	}
	seen := make(map[int]bool)
	for _, e := range codes {
		assert.False(t, seen[e.Code], "duplicate code %d", e.Code)
		seen[e.Code] = true
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidDateRange, http.StatusBadRequest},
		{ErrOtpExpired.WithMessage("过期"), http.StatusBadRequest},
		{ErrTokenInvalid, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrBookingNotFound, http.StatusNotFound},
		{ErrDateConflict, http.StatusConflict},
		{ErrInvalidTransition, http.StatusConflict},
		{ErrRateLimitExceed, http.StatusTooManyRequests},
		{ErrSmsSendFail.WithError(stderrors.New("gateway down")), http.StatusBadGateway},
		{ErrDatabaseError, http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}
