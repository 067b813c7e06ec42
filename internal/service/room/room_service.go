// Package room 提供房间目录服务
package room

import (
	"context"
	stderrors "errors"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/pkg/oss"
)

// RoomStore 房间持久化
type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context, onlyAvailable bool) ([]*models.Room, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	HasBlockingBookings(ctx context.Context, id int64) (bool, error)
}

// Options 房间服务参数
type Options struct {
	UploadDir    string
	MaxImageSize int64
	CacheTTL     time.Duration
}

// RoomService 房间服务
type RoomService struct {
	rooms    RoomStore
	cache    *cache.Cache
	uploader oss.Uploader
	metrics  *metrics.Metrics
	opts     Options
}

// NewRoomService 创建房间服务，cache 可为 nil
func NewRoomService(rooms RoomStore, c *cache.Cache, uploader oss.Uploader, m *metrics.Metrics, opts Options) *RoomService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "rooms"
	}
	return &RoomService{rooms: rooms, cache: c, uploader: uploader, metrics: m, opts: opts}
}

// RoomRequest 创建/更新房间请求
type RoomRequest struct {
	Name        string   `form:"name" json:"name" binding:"required,max=100"`
	Description string   `form:"description" json:"description" binding:"required"`
	Price       *float64 `form:"price" json:"price" binding:"required"`
	Capacity    int      `form:"capacity" json:"capacity" binding:"required"`
	Available   *bool    `form:"available" json:"available"`
}

// ImageUpload 房间图片
type ImageUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// ListRooms 房间列表
func (s *RoomService) ListRooms(ctx context.Context, onlyAvailable bool) ([]*models.Room, error) {
	key := listKey(onlyAvailable)
	var rooms []*models.Room
	if s.cacheGet(ctx, key, &rooms) {
		return rooms, nil
	}

	rooms, err := s.rooms.List(ctx, onlyAvailable)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.cacheSet(ctx, key, rooms)
	return rooms, nil
}

// GetRoom 房间详情
func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	key := cache.BuildKey(cache.KeyPrefixRoom, strconv.FormatInt(id, 10))
	var room models.Room
	if s.cacheGet(ctx, key, &room) {
		return &room, nil
	}

	found, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.cacheSet(ctx, key, found)
	return found, nil
}

// CreateRoom 创建房间
func (s *RoomService) CreateRoom(ctx context.Context, req *RoomRequest, image *ImageUpload) (*models.Room, error) {
	if err := validateRoom(req); err != nil {
		return nil, err
	}

	room := &models.Room{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Capacity:    req.Capacity,
		Available:   req.Available == nil || *req.Available,
	}
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		room.ImageURL = &url
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx, 0)
	logger.Info("room created", logger.RoomID(room.ID))
	return room, nil
}

// UpdateRoom 更新房间
func (s *RoomService) UpdateRoom(ctx context.Context, id int64, req *RoomRequest, image *ImageUpload) (*models.Room, error) {
	if err := validateRoom(req); err != nil {
		return nil, err
	}
	if _, err := s.loadRoom(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
		"price":       *req.Price,
		"capacity":    req.Capacity,
	}
	if req.Available != nil {
		fields["available"] = *req.Available
	}
	if image != nil {
		url, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = url
	}

	if err := s.rooms.UpdateFields(ctx, id, fields); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx, id)
	logger.Info("room updated", logger.RoomID(id))
	return s.loadRoom(ctx, id)
}

// DeleteRoom 删除房间，存在已确认或已支付预订时拒绝
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	if _, err := s.loadRoom(ctx, id); err != nil {
		return err
	}
	inUse, err := s.rooms.HasBlockingBookings(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if inUse {
		return errors.ErrRoomInUse
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx, id)
	logger.Info("room deleted", logger.RoomID(id))
	return nil
}

// SampleRooms 初始化示例房间
var SampleRooms = []models.Room{
	{Name: "Deluxe Room", Description: "Spacious room with city view and king-size bed", Price: 150, Capacity: 2, Available: true},
	{Name: "Standard Room", Description: "Comfortable room with queen-size bed", Price: 100, Capacity: 2, Available: true},
	{Name: "Suite", Description: "Luxury suite with separate living area", Price: 250, Capacity: 4, Available: true},
}

// SeedSampleRooms 房间表为空时写入示例房间，返回写入数量
func (s *RoomService) SeedSampleRooms(ctx context.Context) (int, error) {
	existing, err := s.rooms.List(ctx, false)
	if err != nil {
		return 0, errors.ErrDatabaseError.WithError(err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range SampleRooms {
		room := SampleRooms[i]
		if err := s.rooms.Create(ctx, &room); err != nil {
			return i, errors.ErrDatabaseError.WithError(err)
		}
	}
	s.invalidate(ctx, 0)
	return len(SampleRooms), nil
}

func (s *RoomService) loadRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

func (s *RoomService) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	if s.uploader == nil {
		return "", errors.ErrFileUploadError.WithMessage("未配置对象存储")
	}
	reader, contentType, err := oss.ValidateImage(image.Filename, image.Size, s.opts.MaxImageSize, image.Reader)
	if err != nil {
		return "", errors.ErrInvalidParams.WithMessage("图片格式或大小不符合要求").WithError(err)
	}
	url, err := s.uploader.Upload(ctx, oss.GenerateObjectKey(s.opts.UploadDir, image.Filename), reader, contentType)
	if err != nil {
		return "", errors.ErrFileUploadError.WithError(err)
	}
	return url, nil
}

func (s *RoomService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.cache.Enabled() {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logger.Warn("room cache read failed", logger.Err(err))
		return false
	}
	s.metrics.RecordCacheLookup("room", hit)
	return hit
}

func (s *RoomService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
		logger.Warn("room cache write failed", logger.Err(err))
	}
}

// invalidate 清除列表缓存，id 非零时同时清除详情缓存
func (s *RoomService) invalidate(ctx context.Context, id int64) {
	keys := []string{listKey(true), listKey(false)}
	if id > 0 {
		keys = append(keys, cache.BuildKey(cache.KeyPrefixRoom, strconv.FormatInt(id, 10)))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Warn("room cache invalidation failed", logger.Err(err))
	}
}

func listKey(onlyAvailable bool) string {
	if onlyAvailable {
		return cache.BuildKey(cache.KeyPrefixRoom, "list", "available")
	}
	return cache.BuildKey(cache.KeyPrefixRoom, "list", "all")
}

func validateRoom(req *RoomRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.ErrInvalidParams.WithMessage("房间名称不能为空")
	}
	if req.Price == nil || *req.Price < 0 {
		return errors.ErrInvalidParams.WithMessage("价格不能为负数")
	}
	if req.Capacity < 1 {
		return errors.ErrInvalidParams.WithMessage("容纳人数至少为 1")
	}
	return nil
}
