package models

import "time"

// UserState holds per-installation settings.
// Note: The table name is "user_state" to avoid conflicts with reserved keywords.
type UserState struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ClientID  string    `gorm:"size:64" json:"client_id"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (UserState) TableName() string {
	return "user_state"
}

// KVEntry is one row of the durable key-value table.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     []byte    `gorm:"type:blob" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// SyncMeta stores bookkeeping values as key-value pairs.
type SyncMeta struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SyncMeta) TableName() string {
	return "sync_meta"
}

// Common sync meta keys.
const (
	SyncMetaSchemaVersion = "schema_version"
	SyncMetaAppVersion    = "app_version"
	SyncMetaLastSync      = "last_ranking_sync"
)
