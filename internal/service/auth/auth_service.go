// Package auth 提供认证服务
package auth

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/validator"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// UserStore 用户持久化
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
}

// AuthService 认证服务
type AuthService struct {
	users      UserStore
	jwtManager *jwt.Manager
	bcryptCost int
}

// NewAuthService 创建认证服务
func NewAuthService(users UserStore, jwtManager *jwt.Manager, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
	}
}

// SignupRequest 注册请求
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone" binding:"required,phone"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserInfo 用户信息
type UserInfo struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
	Role  string  `json:"role"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User      *UserInfo      `json:"user"`
	TokenPair *jwt.TokenPair `json:"token"`
}

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

// Signup 注册顾客账号
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*LoginResponse, error) {
	if len(req.Password) < MinPasswordLength {
		return nil, errors.ErrPasswordTooShort
	}
	phone, err := validator.NormalizePhone(req.Phone)
	if err != nil {
		return nil, errors.ErrPhoneInvalid
	}
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrUserExists
	}

	hash, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        &phone,
		Role:         models.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrUserExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("user signed up", logger.UserID(user.ID))
	return s.issue(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, errors.ErrPasswordError
	}
	return s.issue(user)
}

// RefreshToken 刷新令牌
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	pair, err := s.jwtManager.RefreshToken(refreshToken)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenRefreshFail.WithError(err)
	}
	return pair, nil
}

// EnsureAdmin 确保管理员账号存在，已存在时提升为管理员角色
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, phone string) (*models.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if !user.IsAdmin() {
			if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"role": models.RoleAdmin}); err != nil {
				return nil, errors.ErrDatabaseError.WithError(err)
			}
			user.Role = models.RoleAdmin
		}
		return user, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	hash, err := crypto.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	user = &models.User{Name: "Admin", Email: email, PasswordHash: hash, Role: models.RoleAdmin}
	if phone != "" {
		normalized, err := validator.NormalizePhone(phone)
		if err != nil {
			return nil, errors.ErrPhoneInvalid
		}
		user.Phone = &normalized
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("admin account created", logger.UserID(user.ID))
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*LoginResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return &LoginResponse{User: ToUserInfo(user), TokenPair: pair}, nil
}

// ToUserInfo 转换为用户信息
func ToUserInfo(user *models.User) *UserInfo {
	return &UserInfo{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
