// Package validator 提供请求参数校验扩展
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
)

// DefaultRegion 未带国家码号码的默认地区
var DefaultRegion = "US"

// NormalizePhone 解析手机号并格式化为 E.164
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", errors.ErrPhoneInvalid
	}
	num, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", errors.ErrPhoneInvalid
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// validatePhone 校验 phone 标签
func validatePhone(fl validator.FieldLevel) bool {
	_, err := NormalizePhone(fl.Field().String())
	return err == nil
}

// Register 向 gin 默认校验引擎注册自定义标签
func Register(region string) error {
	if region != "" {
		DefaultRegion = strings.ToUpper(region)
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("phone", validatePhone)
}
