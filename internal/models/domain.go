package models

import "time"

// Domain 可分发的父域名表，每行携带自己的区域与 API 凭据
type Domain struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Domain    string    `gorm:"uniqueIndex;not null" json:"domain"`
	ZoneID    string    `gorm:"default:''" json:"-"`
	APIToken  string    `gorm:"default:''" json:"-"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Domain) TableName() string {
	return "domains"
}
