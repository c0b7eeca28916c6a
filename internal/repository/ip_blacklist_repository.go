package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// IPBlacklistRepository IP 黑名单数据访问接口
type IPBlacklistRepository interface {
	GetByIP(ip string) (*models.IPBlacklistEntry, error)
	List() ([]models.IPBlacklistEntry, error)
	Create(entry *models.IPBlacklistEntry) error
	Delete(id uint) error
}

// GormIPBlacklistRepository GORM 实现
type GormIPBlacklistRepository struct {
	db *gorm.DB
}

// NewIPBlacklistRepository 创建 IP 黑名单仓库
func NewIPBlacklistRepository(db *gorm.DB) *GormIPBlacklistRepository {
	return &GormIPBlacklistRepository{db: db}
}

// GetByIP 查询 IP 是否在黑名单内
func (r *GormIPBlacklistRepository) GetByIP(ip string) (*models.IPBlacklistEntry, error) {
	var row models.IPBlacklistEntry
	if err := r.db.Where("ip_address = ?", ip).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List 黑名单列表
func (r *GormIPBlacklistRepository) List() ([]models.IPBlacklistEntry, error) {
	var rows []models.IPBlacklistEntry
	if err := r.db.Order("banned_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create 添加黑名单记录，重复添加视为成功
func (r *GormIPBlacklistRepository) Create(entry *models.IPBlacklistEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// Delete 移除黑名单记录
func (r *GormIPBlacklistRepository) Delete(id uint) error {
	return r.db.Delete(&models.IPBlacklistEntry{}, id).Error
}
