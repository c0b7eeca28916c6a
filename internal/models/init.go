package models

import (
	"strings"

	"github.com/domku/domku-api/internal/logger"
)

// InitDefaultDomain 初始化默认父域名记录，已存在则跳过
func InitDefaultDomain(domain, zoneID, apiToken string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil
	}

	var count int64
	if err := DB.Model(&Domain{}).Where("domain = ?", domain).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	row := Domain{
		Domain:   domain,
		ZoneID:   strings.TrimSpace(zoneID),
		APIToken: strings.TrimSpace(apiToken),
		IsActive: true,
	}
	if err := DB.Create(&row).Error; err != nil {
		return err
	}

	logger.Infow("default_domain_created", "domain", domain, "zone_configured", row.ZoneID != "")
	return nil
}

// InitDefaultSettings 补齐缺失的系统设置键
func InitDefaultSettings(defaults map[string]string) error {
	for key, value := range defaults {
		var count int64
		if err := DB.Model(&Setting{}).Where("key = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&Setting{Key: key, Value: value}).Error; err != nil {
			return err
		}
	}
	return nil
}
