// Package sms 短信服务
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// 短信服务商
const (
	ProviderAliyun = "aliyun"
	ProviderTwilio = "twilio"
	ProviderMock   = "mock"
)

// ErrProviderUnsupported 不支持的短信服务商
var ErrProviderUnsupported = errors.New("unsupported sms provider")

// Sender 短信发送器接口
type Sender interface {
	// SendCode 向 E.164 格式手机号发送验证码
	SendCode(ctx context.Context, phone, code string) error
	// Provider 返回服务商名称
	Provider() string
}

// Config 短信配置
type Config struct {
	Provider        string
	AccessKeyID     string
	AccessKeySecret string
	SignName        string
	TemplateID      string
	TwilioSID       string
	TwilioToken     string
	FromNumber      string
	MessageFormat   string // 文本短信格式，%s 为验证码
}

// DefaultMessageFormat 默认验证码文案
const DefaultMessageFormat = "Your OTP for booking is: %s"

// FormatMessage 生成验证码文案
func (c *Config) FormatMessage(code string) string {
	format := c.MessageFormat
	if format == "" || !strings.Contains(format, "%s") {
		format = DefaultMessageFormat
	}
	return fmt.Sprintf(format, code)
}

// New 根据配置创建短信发送器
func New(cfg *Config) (Sender, error) {
	switch cfg.Provider {
	case ProviderAliyun:
		return NewAliyunSender(cfg)
	case ProviderTwilio:
		return NewTwilioSender(cfg), nil
	case "", ProviderMock:
		return NewMockSender(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrProviderUnsupported, cfg.Provider)
	}
}

// MockSender 模拟短信发送器（用于开发/测试）
type MockSender struct {
	mu       sync.Mutex
	messages []MockMessage
	err      error
}

// MockMessage 模拟消息
type MockMessage struct {
	Phone  string
	Code   string
	SentAt time.Time
}

// NewMockSender 创建模拟发送器
func NewMockSender() *MockSender {
	return &MockSender{}
}

// SendCode 模拟发送验证码
func (s *MockSender) SendCode(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, MockMessage{Phone: phone, Code: code, SentAt: time.Now()})
	return nil
}

// Provider 返回服务商名称
func (s *MockSender) Provider() string {
	return ProviderMock
}

// FailWith 之后的发送均返回 err，传 nil 恢复
func (s *MockSender) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Messages 返回已发送消息副本
func (s *MockSender) Messages() []MockMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MockMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastMessage 获取最后发送的消息
func (s *MockSender) LastMessage() *MockMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return nil
	}
	msg := s.messages[len(s.messages)-1]
	return &msg
}
