// Package results keeps the history of relay sessions in sqlite.
package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoSession = errors.New("results: no open session with that name")

// SessionRecord is one row of session history. PairedAt and EndedAt stay nil
// until the guest joins and the session ends.
type SessionRecord struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Game      string     `gorm:"index;not null" json:"game"`
	Host      string     `json:"host"`
	Guest     string     `json:"guest,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	PairedAt  *time.Time `json:"pairedAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// Repository is the read side used by the HTTP layer.
type Repository interface {
	Recent(ctx context.Context, limit int) ([]SessionRecord, error)
}

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("results: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Created(ctx context.Context, game, host string, at time.Time) error {
	rec := SessionRecord{Game: game, Host: host, CreatedAt: at}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *Store) Paired(ctx context.Context, game, guest string, at time.Time) error {
	return s.updateOpen(ctx, game, map[string]any{"guest": guest, "paired_at": at})
}

func (s *Store) Ended(ctx context.Context, game, reason string, at time.Time) error {
	return s.updateOpen(ctx, game, map[string]any{"reason": reason, "ended_at": at})
}

// updateOpen changes the newest session named game that has not ended.
func (s *Store) updateOpen(ctx context.Context, game string, values map[string]any) error {
	var rec SessionRecord
	err := s.db.WithContext(ctx).
		Where("game = ? AND ended_at IS NULL", game).
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNoSession, game)
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&rec).Updates(values).Error
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []SessionRecord
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
