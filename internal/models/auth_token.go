package models

import "time"

// AuthToken 一次性邮件令牌表，覆盖邮箱验证与密码重置两种用途
type AuthToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"` // 32 字节随机 hex
	Type      string    `gorm:"index;not null" json:"type"`    // VERIFY_EMAIL / RESET_PASSWORD
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (AuthToken) TableName() string {
	return "auth_tokens"
}

// Expired 判断令牌是否已过期
func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
