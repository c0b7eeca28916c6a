package models

import "time"

// IPBlacklistEntry IP 黑名单表
type IPBlacklistEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	IPAddress string    `gorm:"uniqueIndex;not null" json:"ip_address"`
	Reason    string    `gorm:"default:''" json:"reason"`
	BannedAt  time.Time `gorm:"autoCreateTime" json:"banned_at"`
}

// TableName 指定表名
func (IPBlacklistEntry) TableName() string {
	return "ip_blacklist"
}
