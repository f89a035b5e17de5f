package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// Get returns the value stored under key, or kv.ErrNotFound.
func (db *DB) Get(key string) ([]byte, error) {
	var entry models.KVEntry
	err := db.First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return entry.Value, nil
}

// Set upserts the value under key.
func (db *DB) Set(key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: value}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Delete removes key. Missing keys are ignored.
func (db *DB) Delete(key string) error {
	return db.DB.Delete(&models.KVEntry{}, "key = ?", key).Error
}

// Keys returns the keys starting with prefix in ascending order.
func (db *DB) Keys(prefix string) ([]string, error) {
	var keys []string
	err := db.Model(&models.KVEntry{}).
		Where("substr(key, 1, ?) = ?", len(prefix), prefix).
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

var _ kv.Store = (*DB)(nil)
