package models

import "time"

// ActivityLog 用户活动日志表
type ActivityLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Action    string    `gorm:"not null" json:"action"`
	Details   string    `gorm:"default:''" json:"details"`
	IPAddress string    `gorm:"default:''" json:"ip_address"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}
