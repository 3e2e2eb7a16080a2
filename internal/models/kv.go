package models

import "time"

// KVEntry is one row of the generic key-value store.
// Value holds JSON (or its sealed, base64 form when encryption is on).
type KVEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	Sealed    bool   `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
