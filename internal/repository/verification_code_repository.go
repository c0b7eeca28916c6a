package repository

import (
	"errors"
	"time"

	"github.com/domku/domku-api/internal/models"

	"gorm.io/gorm"
)

// VerificationCodeRepository 登录验证码数据访问接口
type VerificationCodeRepository interface {
	GetByEmail(email string) (*models.VerificationCode, error)
	Upsert(email, code string) error
	DeleteByEmail(email string) error
}

// GormVerificationCodeRepository GORM 实现
type GormVerificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository 创建验证码仓库
func NewVerificationCodeRepository(db *gorm.DB) *GormVerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

// GetByEmail 根据邮箱获取验证码
func (r *GormVerificationCodeRepository) GetByEmail(email string) (*models.VerificationCode, error) {
	var row models.VerificationCode
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Upsert 覆盖写入邮箱的验证码，每个邮箱同时只有一个有效码
func (r *GormVerificationCodeRepository) Upsert(email, code string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		existing := models.VerificationCode{}
		err := tx.Where("email = ?", email).First(&existing).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			return tx.Create(&models.VerificationCode{Email: email, Code: code}).Error
		}
		existing.Code = code
		existing.CreatedAt = time.Now()
		return tx.Save(&existing).Error
	})
}

// DeleteByEmail 删除邮箱的验证码（消费后失效）
func (r *GormVerificationCodeRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", email).Delete(&models.VerificationCode{}).Error
}
