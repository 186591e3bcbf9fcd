// Package adapters provides repository implementations for the recipes feature.
package adapters

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/usecase"
)

// searchHistoryGorm is a GORM implementation of the SearchHistoryRepository interface.
// Postgres と SQLite の両方で動作します。
type searchHistoryGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure searchHistoryGorm implements SearchHistoryRepository.
var _ usecase.SearchHistoryRepository = (*searchHistoryGorm)(nil)

// NewSearchHistoryGorm creates a new instance of searchHistoryGorm.
func NewSearchHistoryGorm(db *gorm.DB) *searchHistoryGorm {
	return &searchHistoryGorm{db: db, now: time.Now}
}

// Create persists a search record. SearchedAt が未設定の場合は現在時刻を入れ、
// 採番されたIDとともに rec に書き戻します。
func (r *searchHistoryGorm) Create(ctx context.Context, rec *entity.SearchRecord) error {
	if rec.SearchedAt.IsZero() {
		rec.SearchedAt = r.now().UTC()
	}
	model := SearchHistoryModelFromEntity(rec)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("create search history: %w", err)
	}
	rec.ID = model.ID
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *searchHistoryGorm) ListRecent(ctx context.Context, limit int) ([]entity.SearchRecord, error) {
	var models []SearchHistoryModel
	if err := r.db.WithContext(ctx).
		Order("searched_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}

	out := make([]entity.SearchRecord, len(models))
	for i := range models {
		out[i] = models[i].ToEntity()
	}
	return out, nil
}
