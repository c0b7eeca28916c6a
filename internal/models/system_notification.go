package models

import "time"

// SystemNotification 系统广播通知表，客户端轮询读取
type SystemNotification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	Type      string    `gorm:"default:'info'" json:"type"` // info / warning / critical
	ImageURL  string    `gorm:"default:''" json:"image_url"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (SystemNotification) TableName() string {
	return "system_notifications"
}
