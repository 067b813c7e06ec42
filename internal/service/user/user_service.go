// Package user 提供用户资料服务
package user

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	authService "github.com/dumeirei/hotel-booking-backend/internal/service/auth"
)

// UserStore 用户持久化
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// UserService 用户服务
type UserService struct {
	users      UserStore
	bcryptCost int
}

// NewUserService 创建用户服务
func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// UpdateProfileRequest 更新资料请求，字段为空表示不修改
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" binding:"omitempty,phone"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// GetProfile 获取个人资料
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*authService.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return authService.ToUserInfo(user), nil
}

// UpdateProfile 更新个人资料
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*authService.UserInfo, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errors.ErrInvalidParams.WithMessage("姓名不能为空")
		}
		fields["name"] = name
		user.Name = name
	}
	if req.Phone != nil {
		phone, err := validator.NormalizePhone(*req.Phone)
		if err != nil {
			return nil, errors.ErrPhoneInvalid
		}
		fields["phone"] = phone
		user.Phone = &phone
	}
	if len(fields) == 0 {
		return authService.ToUserInfo(user), nil
	}

	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return authService.ToUserInfo(user), nil
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	if len(req.NewPassword) < authService.MinPasswordLength {
		return errors.ErrPasswordTooShort
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return errors.ErrOldPasswordMismatch
	}

	hash, err := crypto.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": hash}); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

func (s *UserService) getUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return user, nil
}
