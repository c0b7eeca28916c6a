package repository

import (
	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 系统通知数据访问接口
type NotificationRepository interface {
	List(limit int) ([]models.SystemNotification, error)
	Create(notification *models.SystemNotification) error
	Delete(id uint) error
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建系统通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// List 按时间倒序获取通知
func (r *GormNotificationRepository) List(limit int) ([]models.SystemNotification, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.SystemNotification
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create 发布通知
func (r *GormNotificationRepository) Create(notification *models.SystemNotification) error {
	return r.db.Create(notification).Error
}

// Delete 删除通知
func (r *GormNotificationRepository) Delete(id uint) error {
	return r.db.Delete(&models.SystemNotification{}, id).Error
}
