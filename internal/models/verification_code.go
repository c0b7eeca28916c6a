package models

import "time"

// VerificationCode 登录一次性验证码表，每个邮箱只保留一条
type VerificationCode struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Code      string    `gorm:"not null" json:"-"` // 4 位数字
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (VerificationCode) TableName() string {
	return "verification_codes"
}
