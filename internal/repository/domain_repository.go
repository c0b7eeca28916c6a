package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// DomainRepository 父域名数据访问接口
type DomainRepository interface {
	GetByDomain(domain string) (*models.Domain, error)
	ListActive() ([]models.Domain, error)
	Create(domain *models.Domain) error
	Update(domain *models.Domain) error
	Delete(id uint) error
}

// GormDomainRepository GORM 实现
type GormDomainRepository struct {
	db *gorm.DB
}

// NewDomainRepository 创建父域名仓库
func NewDomainRepository(db *gorm.DB) *GormDomainRepository {
	return &GormDomainRepository{db: db}
}

// GetByDomain 根据域名获取记录
func (r *GormDomainRepository) GetByDomain(domain string) (*models.Domain, error) {
	var row models.Domain
	if err := r.db.Where("domain = ?", domain).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListActive 获取启用中的父域名列表
func (r *GormDomainRepository) ListActive() ([]models.Domain, error) {
	var rows []models.Domain
	if err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create 创建父域名
func (r *GormDomainRepository) Create(domain *models.Domain) error {
	return r.db.Create(domain).Error
}

// Update 更新父域名
func (r *GormDomainRepository) Update(domain *models.Domain) error {
	return r.db.Save(domain).Error
}

// Delete 删除父域名
func (r *GormDomainRepository) Delete(id uint) error {
	return r.db.Delete(&models.Domain{}, id).Error
}
