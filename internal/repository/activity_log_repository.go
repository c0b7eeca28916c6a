package repository

import (
	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// ActivityLogRepository 活动日志数据访问接口
type ActivityLogRepository interface {
	Create(log *models.ActivityLog) error
	ListByUser(userID uint, limit int) ([]models.ActivityLog, error)
	ListRecent(limit int) ([]models.ActivityLog, error)
	CountsByUser() (map[uint]int64, error)
	DeleteByUser(userID uint) error
	DeleteAll() (int64, error)
	Count() (int64, error)
}

// GormActivityLogRepository GORM 实现
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository 创建活动日志仓库
func NewActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create 写入一条活动日志
func (r *GormActivityLogRepository) Create(log *models.ActivityLog) error {
	return r.db.Create(log).Error
}

// ListByUser 获取用户最近的活动日志
func (r *GormActivityLogRepository) ListByUser(userID uint, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ActivityLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListRecent 获取全站最近的活动日志（管理面板）
func (r *GormActivityLogRepository) ListRecent(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 15
	}
	var rows []models.ActivityLog
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountsByUser 按用户聚合日志数量（风险评分）
func (r *GormActivityLogRepository) CountsByUser() (map[uint]int64, error) {
	type row struct {
		UserID uint
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.ActivityLog{}).
		Select("user_id, COUNT(*) AS total").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, item := range rows {
		counts[item.UserID] = item.Total
	}
	return counts, nil
}

// DeleteByUser 删除用户的全部日志（注销级联）
func (r *GormActivityLogRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.ActivityLog{}).Error
}

// DeleteAll 清空全部活动日志，返回删除行数
func (r *GormActivityLogRepository) DeleteAll() (int64, error) {
	result := r.db.Where("1 = 1").Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}

// Count 日志总数
func (r *GormActivityLogRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
