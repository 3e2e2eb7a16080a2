package models

import "time"

// AuditLog records mutating API calls.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	Method    string `gorm:"size:16"`
	PathEnc   string `gorm:"size:1024"` // 加密后的路径
	ActionEnc string `gorm:"size:4096"` // 加密后的动作 + 请求体摘要
	Status    int
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`
}
