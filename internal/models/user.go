package models

import "time"

// User 用户表，邮箱验证完成后才会写入
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                // 主键
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`   // 邮箱
	Name         string    `gorm:"default:''" json:"name"`              // 昵称
	PasswordHash string    `gorm:"not null" json:"-"`                   // 密码哈希（不返回给前端）
	Bio          string    `gorm:"default:''" json:"bio"`               // 个人简介
	Phone        string    `gorm:"default:''" json:"phone"`             // 电话
	AvatarURL    string    `gorm:"default:''" json:"avatar_url"`        // 头像地址
	APIKey       string    `gorm:"uniqueIndex;not null" json:"api_key"` // 子域名操作凭据
	CreatedAt    time.Time `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                          // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
