package sms

import (
	"context"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v3/client"
	"github.com/alibabacloud-go/tea/tea"
	"github.com/goccy/go-json"
)

const aliyunEndpoint = "dysmsapi.aliyuncs.com"

type aliyunAPI interface {
	SendSms(request *dysmsapi.SendSmsRequest) (*dysmsapi.SendSmsResponse, error)
}

// AliyunSender 阿里云短信发送器
type AliyunSender struct {
	client     aliyunAPI
	signName   string
	templateID string
}

// NewAliyunSender 创建阿里云短信发送器
func NewAliyunSender(cfg *Config) (*AliyunSender, error) {
	client, err := dysmsapi.NewClient(&openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String(aliyunEndpoint),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sms client: %w", err)
	}
	return &AliyunSender{client: client, signName: cfg.SignName, templateID: cfg.TemplateID}, nil
}

// SendCode 发送验证码，模板参数为 {"code": "..."}
func (s *AliyunSender) SendCode(ctx context.Context, phone, code string) error {
	templateParam, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return fmt.Errorf("failed to marshal template param: %w", err)
	}

	resp, err := s.client.SendSms(&dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(phone),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(s.templateID),
		TemplateParam: tea.String(string(templateParam)),
	})
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	if resp == nil || resp.Body == nil || tea.StringValue(resp.Body.Code) != "OK" {
		code, msg := "UNKNOWN", "empty response"
		if resp != nil && resp.Body != nil {
			code, msg = tea.StringValue(resp.Body.Code), tea.StringValue(resp.Body.Message)
		}
		return fmt.Errorf("sms send failed: %s - %s", code, msg)
	}
	return nil
}

// Provider 返回服务商名称
func (s *AliyunSender) Provider() string {
	return ProviderAliyun
}
