package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crypto_converter/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the durable quote store. Quote rows are append-only: the flush
// scheduler inserts snapshots, the retention sweeper deletes by age, and the
// conversion resolver reads. Nothing updates a row in place.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path.
func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Pure-Go SQLite driver
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.QuoteRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// SaveSnapshot persists one cache snapshot in a single transaction.
// Either every quote in the batch commits or none of it does.
func (s *Storage) SaveSnapshot(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	rows := make([]domain.QuoteRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, domain.NewQuoteRow(q))
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

// Latest returns the most recently observed persisted quote for the pair,
// or (zero, false) when the pair has never been persisted.
func (s *Storage) Latest(ctx context.Context, pair domain.Pair) (domain.Quote, bool, error) {
	var row domain.QuoteRow
	err := s.db.WithContext(ctx).
		Where("base = ? AND quote = ?", pair.Base, pair.Quote).
		Order("observed_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}

	q, err := row.ToQuote()
	if err != nil {
		return domain.Quote{}, false, fmt.Errorf("corrupt quote row %d: %w", row.ID, err)
	}
	return q, true, nil
}

// LatestAt returns the most recent persisted quote for the pair with
// observed_at at or before ts, or (zero, false) when none exists.
func (s *Storage) LatestAt(ctx context.Context, pair domain.Pair, ts time.Time) (domain.Quote, bool, error) {
	var row domain.QuoteRow
	err := s.db.WithContext(ctx).
		Where("base = ? AND quote = ? AND observed_at <= ?", pair.Base, pair.Quote, ts.UTC()).
		Order("observed_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}

	q, err := row.ToQuote()
	if err != nil {
		return domain.Quote{}, false, fmt.Errorf("corrupt quote row %d: %w", row.ID, err)
	}
	return q, true, nil
}

// HasPair reports whether any row exists for the pair, regardless of age.
func (s *Storage) HasPair(ctx context.Context, pair domain.Pair) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.QuoteRow{}).
		Where("base = ? AND quote = ?", pair.Base, pair.Quote).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// DeleteOlderThan removes every quote row observed before cutoff and
// returns the number of rows deleted. Idempotent.
func (s *Storage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("observed_at < ?", cutoff.UTC()).
		Delete(&domain.QuoteRow{})
	return res.RowsAffected, res.Error
}
