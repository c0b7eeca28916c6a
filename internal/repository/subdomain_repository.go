package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// ErrSubdomainNameTaken 唯一索引冲突时返回，标识并发创建同名子域名
var ErrSubdomainNameTaken = errors.New("subdomain name taken")

// SubdomainRepository 子域名数据访问接口
type SubdomainRepository interface {
	GetByID(id uint) (*models.Subdomain, error)
	GetByName(name string) (*models.Subdomain, error)
	ListByUser(userID uint) ([]models.Subdomain, error)
	CountByUser(userID uint) (int64, error)
	CountsByUser() (map[uint]int64, error)
	Create(subdomain *models.Subdomain) error
	Delete(id uint) error
	DeleteByUser(userID uint) error
	Count() (int64, error)
}

// GormSubdomainRepository GORM 实现
type GormSubdomainRepository struct {
	db *gorm.DB
}

// NewSubdomainRepository 创建子域名仓库
func NewSubdomainRepository(db *gorm.DB) *GormSubdomainRepository {
	return &GormSubdomainRepository{db: db}
}

// GetByID 根据 ID 获取子域名
func (r *GormSubdomainRepository) GetByID(id uint) (*models.Subdomain, error) {
	var row models.Subdomain
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByName 根据完整域名获取子域名
func (r *GormSubdomainRepository) GetByName(name string) (*models.Subdomain, error) {
	var row models.Subdomain
	if err := r.db.Where("name = ?", name).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByUser 获取用户的全部子域名
func (r *GormSubdomainRepository) ListByUser(userID uint) ([]models.Subdomain, error) {
	var rows []models.Subdomain
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByUser 统计用户的子域名数量（配额检查）
func (r *GormSubdomainRepository) CountByUser(userID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&models.Subdomain{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CountsByUser 按用户聚合子域名数量（风险评分）
func (r *GormSubdomainRepository) CountsByUser() (map[uint]int64, error) {
	type row struct {
		UserID uint
		Total  int64
	}
	var rows []row
	err := r.db.Model(&models.Subdomain{}).
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

// Create 创建子域名，唯一索引冲突返回 ErrSubdomainNameTaken
func (r *GormSubdomainRepository) Create(subdomain *models.Subdomain) error {
	if err := r.db.Create(subdomain).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return ErrSubdomainNameTaken
		}
		return err
	}
	return nil
}

// Delete 删除子域名
func (r *GormSubdomainRepository) Delete(id uint) error {
	return r.db.Delete(&models.Subdomain{}, id).Error
}

// DeleteByUser 删除用户的全部子域名（注销级联）
func (r *GormSubdomainRepository) DeleteByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Subdomain{}).Error
}

// Count 子域名总数
func (r *GormSubdomainRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Subdomain{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
