// SQLite-backed Backend. A single kv_entries table holds the flat key
// space: one row per key, payload stored as text.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrWriteRejected is returned by Backend.Set when the underlying store
// refuses the write (disk full, locked database). Callers treat it as a
// degraded condition, never a panic.
var ErrWriteRejected = errors.New("store: write rejected by backend")

// KVEntry is one persisted key-value row.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(255)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }

// SQLBackend persists keys in a SQLite file via GORM.
type SQLBackend struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite database at path, applies PRAGMAs
// suitable for a single-process writer, and migrates the kv_entries table.
func OpenSQLite(path string) (*SQLBackend, error) {
	// Fail early if the parent directory does not exist, instead of the
	// opaque sqlite "out of memory (14)" error on some platforms.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &SQLBackend{db: db}, nil
}

// NewSQLBackend wraps an already-open GORM handle. The caller is responsible
// for migrating KVEntry (tests typically use an in-memory DSN).
func NewSQLBackend(db *gorm.DB) *SQLBackend { return &SQLBackend{db: db} }

// Get implements Backend. Database errors degrade to a miss: the data layer
// favors availability over strict correctness.
func (b *SQLBackend) Get(key string) (string, bool) {
	var row KVEntry
	err := b.db.Where("key = ?", key).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("kv read failed")
		}
		return "", false
	}
	return row.Value, true
}

// Set implements Backend using an upsert on the primary key.
func (b *SQLBackend) Set(key, value string) error {
	row := KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv write failed")
		return ErrWriteRejected
	}
	return nil
}

// Delete implements Backend.
func (b *SQLBackend) Delete(key string) {
	if err := b.db.Where("key = ?", key).Delete(&KVEntry{}).Error; err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv delete failed")
	}
}

// Keys implements Backend.
func (b *SQLBackend) Keys() []string {
	var keys []string
	if err := b.db.Model(&KVEntry{}).Pluck("key", &keys).Error; err != nil {
		log.Warn().Err(err).Msg("kv key listing failed")
		return nil
	}
	return keys
}
