package payment

import (
	"context"
	"errors"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
)

// Recorder 支付结果统计
type Recorder interface {
	RecordPayment(provider, status string)
}

// BreakerGateway 带熔断的支付网关，仅保护出站的 CreateIntent
type BreakerGateway struct {
	Gateway
	breaker  *circuit.Breaker
	timeout  time.Duration
	recorder Recorder
}

// NewBreakerGateway 包装网关
func NewBreakerGateway(next Gateway, threshold int64, timeout time.Duration, recorder Recorder) *BreakerGateway {
	if threshold <= 0 {
		threshold = 5
	}
	return &BreakerGateway{
		Gateway:  next,
		breaker:  circuit.NewConsecutiveBreaker(threshold),
		timeout:  timeout,
		recorder: recorder,
	}
}

// CreateIntent 经熔断器创建支付意图
func (g *BreakerGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	var intent *Intent
	err := g.breaker.Call(func() error {
		var callErr error
		intent, callErr = g.Gateway.CreateIntent(ctx, amount, currency, metadata)
		return callErr
	}, g.timeout)

	if g.recorder != nil {
		status := "intent_created"
		switch {
		case errors.Is(err, circuit.ErrBreakerOpen):
			status = "breaker_open"
		case err != nil:
			status = "intent_failed"
		}
		g.recorder.RecordPayment(g.Gateway.Provider(), status)
	}
	if err != nil {
		return nil, err
	}
	return intent, nil
}
