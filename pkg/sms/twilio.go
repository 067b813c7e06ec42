package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type twilioAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender Twilio 文本短信发送器
type TwilioSender struct {
	api    twilioAPI
	from   string
	config *Config
}

// NewTwilioSender 创建 Twilio 发送器
func NewTwilioSender(cfg *Config) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioSID,
		Password: cfg.TwilioToken,
	})
	return &TwilioSender{api: client.Api, from: cfg.FromNumber, config: cfg}
}

// SendCode 发送验证码文本短信
func (s *TwilioSender) SendCode(ctx context.Context, phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(s.config.FormatMessage(code))

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	return nil
}

// Provider 返回服务商名称
func (s *TwilioSender) Provider() string {
	return ProviderTwilio
}
