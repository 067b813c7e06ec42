package sms

import (
	"context"
	"errors"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
)

// Recorder 发送结果统计
type Recorder interface {
	RecordSMS(provider, status string)
}

// BreakerSender 带熔断的发送器，连续失败达到阈值后短路
type BreakerSender struct {
	next     Sender
	breaker  *circuit.Breaker
	timeout  time.Duration
	recorder Recorder
}

// NewBreakerSender 包装发送器
func NewBreakerSender(next Sender, threshold int64, timeout time.Duration, recorder Recorder) *BreakerSender {
	if threshold <= 0 {
		threshold = 5
	}
	return &BreakerSender{
		next:     next,
		breaker:  circuit.NewConsecutiveBreaker(threshold),
		timeout:  timeout,
		recorder: recorder,
	}
}

// SendCode 经熔断器发送验证码
func (s *BreakerSender) SendCode(ctx context.Context, phone, code string) error {
	err := s.breaker.Call(func() error {
		return s.next.SendCode(ctx, phone, code)
	}, s.timeout)

	if s.recorder != nil {
		status := "success"
		switch {
		case errors.Is(err, circuit.ErrBreakerOpen):
			status = "breaker_open"
		case err != nil:
			status = "failure"
		}
		s.recorder.RecordSMS(s.next.Provider(), status)
	}
	return err
}

// Provider 返回被包装发送器的服务商
func (s *BreakerSender) Provider() string {
	return s.next.Provider()
}

// Tripped 熔断器是否处于打开状态
func (s *BreakerSender) Tripped() bool {
	return s.breaker.Tripped()
}
