package service

import (
	"context"
	"strings"
	"time"

	"github.com/domku/domku-api/internal/cache"
	"github.com/domku/domku-api/internal/constants"
	"github.com/domku/domku-api/internal/logger"
	"github.com/domku/domku-api/internal/models"
	"github.com/domku/domku-api/internal/repository"
)

const (
	settingCacheKey = "settings"
	settingCacheTTL = 60 * time.Second
)

// SettingService 系统设置服务，维护模式等键值经 Redis 短缓存
type SettingService struct {
	settings repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(settings repository.SettingRepository) *SettingService {
	return &SettingService{settings: settings}
}

// Get 读取单个设置，缺失返回空串
func (s *SettingService) Get(key string) (string, error) {
	row, err := s.settings.GetByKey(key)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", nil
	}
	return row.Value, nil
}

// Upsert 写入设置并使缓存失效
func (s *SettingService) Upsert(key, value string) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrIncompleteInput
	}
	row, err := s.settings.Upsert(key, value)
	if err != nil {
		return nil, err
	}
	if err := cache.Del(context.Background(), settingCacheKey); err != nil {
		logger.Warnw("setting_cache_invalidate_failed", "key", key, "error", err)
	}
	return row, nil
}

// All 返回全部设置的键值映射，命中缓存时直接返回
func (s *SettingService) All() (map[string]string, error) {
	ctx := context.Background()
	cached := map[string]string{}
	if hit, err := cache.GetJSON(ctx, settingCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.settings.List()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	if err := cache.SetJSON(ctx, settingCacheKey, values, settingCacheTTL); err != nil {
		logger.Warnw("setting_cache_write_failed", "error", err)
	}
	return values, nil
}

// MaintenanceMode 读取维护模式开关，读取失败按关闭处理
func (s *SettingService) MaintenanceMode() bool {
	value, err := s.Get(constants.SettingKeyMaintenanceMode)
	if err != nil {
		logger.Warnw("maintenance_flag_read_failed", "error", err)
		return false
	}
	return parseBoolSetting(value)
}

// SetMaintenanceMode 写入维护模式开关
func (s *SettingService) SetMaintenanceMode(enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	_, err := s.Upsert(constants.SettingKeyMaintenanceMode, value)
	return err
}

func parseBoolSetting(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
