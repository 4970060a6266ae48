package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MarxCha/poa-dashboard/internal/domain/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SessionEntryModel is one persisted session key
type SessionEntryModel struct {
	Key       string `gorm:"column:session_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SessionEntryModel) TableName() string {
	return "session_entries"
}

// GormStore persists session keys in a relational table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an existing connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenSQLiteStore opens (or creates) the sqlite file at path.
// ":memory:" gives a private database for the life of the store.
func OpenSQLiteStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite session store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	sqlDB.SetMaxOpenConns(1)

	return &GormStore{db: db}, nil
}

// Init creates the table if needed
func (s *GormStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&SessionEntryModel{}); err != nil {
		return fmt.Errorf("failed to migrate session store: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key string) (string, error) {
	var model SessionEntryModel
	if err := s.db.WithContext(ctx).First(&model, "session_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", session.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	return model.Value, nil
}

// Set upserts a single row
func (s *GormStore) Set(ctx context.Context, key, value string) error {
	model := SessionEntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("session_key IN ?", keys).Delete(&SessionEntryModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete session keys: %w", err)
	}
	return nil
}

// Teardown removes the given keys in one transaction
func (s *GormStore) Teardown(ctx context.Context, keys ...string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return NewGormStore(tx).Delete(ctx, keys...)
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

var _ session.Store = (*GormStore)(nil)
