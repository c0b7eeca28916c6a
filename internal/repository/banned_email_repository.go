package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// BannedEmailRepository 封禁邮箱数据访问接口
type BannedEmailRepository interface {
	GetByEmail(email string) (*models.BannedEmail, error)
	Create(banned *models.BannedEmail) error
	DeleteByEmail(email string) error
	List() ([]models.BannedEmail, error)
	Count() (int64, error)
}

// GormBannedEmailRepository GORM 实现
type GormBannedEmailRepository struct {
	db *gorm.DB
}

// NewBannedEmailRepository 创建封禁邮箱仓库
func NewBannedEmailRepository(db *gorm.DB) *GormBannedEmailRepository {
	return &GormBannedEmailRepository{db: db}
}

// GetByEmail 查询邮箱是否被封禁
func (r *GormBannedEmailRepository) GetByEmail(email string) (*models.BannedEmail, error) {
	var row models.BannedEmail
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Create 写入封禁记录，重复封禁视为成功
func (r *GormBannedEmailRepository) Create(banned *models.BannedEmail) error {
	if err := r.db.Create(banned).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// DeleteByEmail 解除封禁
func (r *GormBannedEmailRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.BannedEmail{}).Error
}

// List 封禁邮箱列表
func (r *GormBannedEmailRepository) List() ([]models.BannedEmail, error) {
	var rows []models.BannedEmail
	if err := r.db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count 封禁邮箱总数
func (r *GormBannedEmailRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.BannedEmail{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
