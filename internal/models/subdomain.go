package models

import "time"

// Subdomain 子域名记录表。Name 上的唯一索引兜住并发创建同名记录的竞态，
// 后写入的一方在落库时失败。
type Subdomain struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"` // 完整域名，如 foo.example.com
	Target       string    `gorm:"not null" json:"target"`           // A 记录的 IP 或 CNAME 目标
	Type         string    `gorm:"not null" json:"type"`             // A / CNAME
	RecordID     string    `gorm:"default:''" json:"-"`              // 服务商记录 ID，创建失败时为 unknown
	ParentDomain string    `gorm:"index;not null" json:"parent_domain"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Subdomain) TableName() string {
	return "subdomains"
}
