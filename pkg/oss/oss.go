// Package oss 对象存储服务
package oss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 存储服务商
const (
	ProviderAliyun = "aliyun"
	ProviderMock   = "mock"
)

var (
	// ErrUnsupportedImage 不支持的图片格式
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrImageTooLarge 图片超过大小限制
	ErrImageTooLarge = errors.New("image too large")
)

// Uploader 上传器接口
type Uploader interface {
	Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
}

// Config 对象存储配置
type Config struct {
	Provider        string
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Domain          string // 自定义域名（可选）
	BasePath        string // 基础路径，如 "rooms"
}

// New 根据配置创建上传器
func New(cfg *Config) (Uploader, error) {
	switch cfg.Provider {
	case ProviderAliyun:
		return NewAliyunUploader(cfg)
	case "", ProviderMock:
		return NewMockUploader(), nil
	default:
		return nil, fmt.Errorf("unsupported oss provider: %s", cfg.Provider)
	}
}

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// GenerateObjectKey 生成对象键：prefix/2006/01/02/uuid.ext
func GenerateObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(prefix, time.Now().Format("2006/01/02"), uuid.NewString()+ext)
}

// ValidateImage 校验扩展名与文件头，返回可继续读取完整内容的 reader 与 Content-Type
func ValidateImage(filename string, size, maxSize int64, reader io.Reader) (io.Reader, string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := imageExts[ext]; !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedImage, ext)
	}
	if maxSize > 0 && size > maxSize {
		return nil, "", ErrImageTooLarge
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(reader, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	header = header[:n]

	contentType := http.DetectContentType(header)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", ErrUnsupportedImage
	}
	return io.MultiReader(bytes.NewReader(header), reader), contentType, nil
}

// MockUploader 模拟上传器（用于开发/测试）
type MockUploader struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMockUploader 创建模拟上传器
func NewMockUploader() *MockUploader {
	return &MockUploader{files: make(map[string][]byte)}
}

// Upload 模拟上传
func (u *MockUploader) Upload(ctx context.Context, objectKey string, reader io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.files[objectKey] = data
	u.mu.Unlock()
	return u.GetURL(objectKey), nil
}

// Delete 模拟删除
func (u *MockUploader) Delete(ctx context.Context, objectKey string) error {
	u.mu.Lock()
	delete(u.files, objectKey)
	u.mu.Unlock()
	return nil
}

// GetURL 获取模拟 URL
func (u *MockUploader) GetURL(objectKey string) string {
	return "https://mock-oss.example.com/" + objectKey
}

// File 返回已上传内容
func (u *MockUploader) File(objectKey string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.files[objectKey]
	return data, ok
}

// Len 已上传文件数
func (u *MockUploader) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.files)
}
