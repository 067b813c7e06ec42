package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MockGateway 模拟支付网关（用于开发/测试），回调签名为 payload 的 HMAC-SHA256
type MockGateway struct {
	mu      sync.Mutex
	secret  string
	intents map[string]MockIntent
	err     error
}

// MockIntent 模拟支付意图记录
type MockIntent struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

// MockWebhook 模拟回调报文
type MockWebhook struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewMockGateway 创建模拟网关
func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{secret: secret, intents: make(map[string]MockIntent)}
}

// CreateIntent 生成模拟支付意图
func (g *MockGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	ref := "pi_mock_" + uuid.NewString()
	g.intents[ref] = MockIntent{Amount: amount, Currency: currency, Metadata: metadata}
	return &Intent{Reference: ref, ClientSecret: ref + "_secret"}, nil
}

// ParseWebhook 校验 HMAC 签名并解析
func (g *MockGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if !hmac.Equal([]byte(g.Sign(payload)), []byte(signature)) {
		return nil, ErrInvalidSignature
	}
	var msg MockWebhook
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrInvalidPayload)
	}
	return &Event{
		ID:        msg.ID,
		Type:      msg.Type,
		Reference: msg.Reference,
		BookingID: parseBookingID(msg.Metadata),
		Outcome:   OutcomeOf(msg.Type),
		Payload:   payload,
	}, nil
}

// Provider 返回服务商名称
func (g *MockGateway) Provider() string {
	return ProviderMock
}

// Sign 计算回调签名
func (g *MockGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildWebhook 构造已签名的模拟回调
func (g *MockGateway) BuildWebhook(msg MockWebhook) (payload []byte, signature string, err error) {
	payload, err = json.Marshal(msg)
	if err != nil {
		return nil, "", err
	}
	return payload, g.Sign(payload), nil
}

// FailWith 之后的 CreateIntent 均返回 err，传 nil 恢复
func (g *MockGateway) FailWith(err error) {
	g.mu.Lock()
	g.err = err
	g.mu.Unlock()
}

// Intent 查询已创建的模拟支付意图
func (g *MockGateway) Intent(reference string) (MockIntent, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[reference]
	return in, ok
}

// IntentCount 已创建的支付意图数量
func (g *MockGateway) IntentCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.intents)
}
