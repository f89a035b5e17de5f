// Package db is the sqlite home of vidtally's durable state: the key-value
// entries behind the progress store, the client identity and sync metadata.
// It uses GORM over the pure-Go sqlite driver, so no cgo is required.
package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/asteroid-belt/vidtally/internal/log"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// SchemaVersion is the current local schema version.
const SchemaVersion = 1

// ErrSchemaTooNew is returned when the file was written by a newer vidtally.
var ErrSchemaTooNew = errors.New("db: schema is newer than this build")

// DB is a sqlite connection holding vidtally's tables.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database options.
type Config struct {
	Path string
	// Debug logs every statement.
	Debug bool
	// SlowQuery is the threshold above which statements are logged as warnings.
	SlowQuery time.Duration
}

// DefaultConfig returns the options used by both binaries.
func DefaultConfig(path string) Config {
	return Config{Path: path, SlowQuery: 200 * time.Millisecond}
}

// New opens (creating if needed) the database at cfg.Path and brings its
// schema up to date.
func New(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	gdb, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger:                 queryLogger(cfg),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The progress store is the only writer; one connection keeps sqlite
	// from returning SQLITE_BUSY between our own goroutines.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	d := &DB{DB: gdb, path: cfg.Path}
	if err := d.upgrade(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return d, nil
}

// DELETE journal mode: WAL has visibility issues with the pure-Go driver.
func dsn(path string) string {
	return path + "?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)"
}

func queryLogger(cfg Config) logger.Interface {
	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// gormWriter sends GORM's statement log to the file logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	l := log.WithComponent("db")
	l.Debug().Msgf(format, args...)
}

// upgrade migrates the tables and stamps the schema version. A file stamped
// by a newer build is left untouched.
func (db *DB) upgrade() error {
	if err := db.AutoMigrate(&models.KVEntry{}, &models.UserState{}, &models.SyncMeta{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	defaults := []models.SyncMeta{
		{Key: models.SyncMetaSchemaVersion, Value: strconv.Itoa(SchemaVersion)},
		{Key: models.SyncMetaAppVersion},
		{Key: models.SyncMetaLastSync},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error; err != nil {
		return fmt.Errorf("seed sync meta: %w", err)
	}

	stored, err := db.GetSyncMeta(models.SyncMetaSchemaVersion)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v, err := strconv.Atoi(stored); err == nil && v > SchemaVersion {
		return fmt.Errorf("%w: file has %d, build has %d", ErrSchemaTooNew, v, SchemaVersion)
	}
	return db.SetSyncMeta(models.SyncMetaSchemaVersion, strconv.Itoa(SchemaVersion))
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
