package models

import "time"

// KVEntry is one JSON blob in the key-value store.
type KVEntry struct {
	Key       string    `json:"key" gorm:"primaryKey;size:191"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
