package models

import "time"

// PendingRegistration 待验证注册表，同一邮箱只保留最新一条
type PendingRegistration struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"index;not null" json:"email"`
	Name         string    `gorm:"default:''" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (PendingRegistration) TableName() string {
	return "pending_registrations"
}
