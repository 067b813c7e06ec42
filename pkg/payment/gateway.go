// Package payment 第三方支付网关
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// 支付服务商
const (
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

// 支付回调事件类型
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

// Outcome 支付结果
type Outcome string

// 支付结果取值
const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeUnknown   Outcome = "unknown"
)

// MetadataBookingID 支付意图中记录预订 ID 的元数据键
const MetadataBookingID = "bookingId"

var (
	// ErrInvalidSignature 回调签名无效
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidPayload 回调内容无法解析
	ErrInvalidPayload = errors.New("invalid webhook payload")
	// ErrProviderUnsupported 不支持的支付服务商
	ErrProviderUnsupported = errors.New("unsupported payment provider")
)

// Intent 支付意图
type Intent struct {
	Reference    string // 服务商侧支付意图 ID
	ClientSecret string // 前端完成支付所需凭据
}

// Event 已验签的回调事件
type Event struct {
	ID        string
	Type      string
	Reference string
	BookingID int64
	Outcome   Outcome
	Payload   []byte
}

// Gateway 支付网关接口
type Gateway interface {
	// CreateIntent 创建支付意图，amount 为最小货币单位
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	// ParseWebhook 校验签名并解析回调
	ParseWebhook(payload []byte, signature string) (*Event, error)
	// Provider 返回服务商名称
	Provider() string
}

// Config 支付配置
type Config struct {
	Provider      string
	SecretKey     string
	WebhookSecret string
}

// New 根据配置创建支付网关
func New(cfg *Config) (Gateway, error) {
	switch cfg.Provider {
	case ProviderStripe:
		return NewStripeGateway(cfg.SecretKey, cfg.WebhookSecret), nil
	case "", ProviderMock:
		return NewMockGateway(cfg.WebhookSecret), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrProviderUnsupported, cfg.Provider)
	}
}

// OutcomeOf 将事件类型映射为支付结果
func OutcomeOf(eventType string) Outcome {
	switch eventType {
	case EventIntentSucceeded:
		return OutcomeSucceeded
	case EventIntentFailed:
		return OutcomeFailed
	default:
		return OutcomeUnknown
	}
}

// parseBookingID 解析元数据中的预订 ID，缺失或非法时返回 0
func parseBookingID(metadata map[string]string) int64 {
	id, err := strconv.ParseInt(metadata[MetadataBookingID], 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
