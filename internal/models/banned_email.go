package models

import "time"

// BannedEmail 封禁邮箱表，注册与登录入口同时拦截
type BannedEmail struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Reason    string    `gorm:"default:''" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (BannedEmail) TableName() string {
	return "banned_emails"
}
