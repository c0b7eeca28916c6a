package repository

import (
	"errors"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// AuthTokenRepository 一次性邮件令牌数据访问接口
type AuthTokenRepository interface {
	GetByToken(token, tokenType string) (*models.AuthToken, error)
	Replace(token *models.AuthToken) error
	Delete(id uint) error
	DeleteByEmail(email string) error
}

// GormAuthTokenRepository GORM 实现
type GormAuthTokenRepository struct {
	db *gorm.DB
}

// NewAuthTokenRepository 创建令牌仓库
func NewAuthTokenRepository(db *gorm.DB) *GormAuthTokenRepository {
	return &GormAuthTokenRepository{db: db}
}

// GetByToken 根据令牌与用途获取记录
func (r *GormAuthTokenRepository) GetByToken(token, tokenType string) (*models.AuthToken, error) {
	var row models.AuthToken
	if err := r.db.Where("token = ? AND type = ?", token, tokenType).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Replace 删除同邮箱同用途的旧令牌后写入新令牌
func (r *GormAuthTokenRepository) Replace(token *models.AuthToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? AND type = ?", token.Email, token.Type).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

// Delete 删除令牌（消费后立即失效）
func (r *GormAuthTokenRepository) Delete(id uint) error {
	return r.db.Delete(&models.AuthToken{}, id).Error
}

// DeleteByEmail 删除邮箱下全部令牌
func (r *GormAuthTokenRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.AuthToken{}).Error
}
