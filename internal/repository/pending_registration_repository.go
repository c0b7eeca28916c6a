package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// PendingRegistrationRepository 待验证注册数据访问接口
type PendingRegistrationRepository interface {
	GetByEmail(email string) (*models.PendingRegistration, error)
	Replace(pending *models.PendingRegistration) error
	DeleteByEmail(email string) error
}

// GormPendingRegistrationRepository GORM 实现
type GormPendingRegistrationRepository struct {
	db *gorm.DB
}

// NewPendingRegistrationRepository 创建待验证注册仓库
func NewPendingRegistrationRepository(db *gorm.DB) *GormPendingRegistrationRepository {
	return &GormPendingRegistrationRepository{db: db}
}

// GetByEmail 根据邮箱获取待验证注册
func (r *GormPendingRegistrationRepository) GetByEmail(email string) (*models.PendingRegistration, error) {
	var pending models.PendingRegistration
	if err := r.db.Where("email = ?", email).Order("id DESC").First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pending, nil
}

// Replace 删除同邮箱旧记录后写入新记录，保证每个邮箱只有一条
func (r *GormPendingRegistrationRepository) Replace(pending *models.PendingRegistration) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", pending.Email).Delete(&models.PendingRegistration{}).Error; err != nil {
			return err
		}
		return tx.Create(pending).Error
	})
}

// DeleteByEmail 删除邮箱对应的待验证注册
func (r *GormPendingRegistrationRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.PendingRegistration{}).Error
}
