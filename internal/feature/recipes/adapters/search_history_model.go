package adapters

import (
	"strings"
	"time"

	"recipe_backend/internal/feature/recipes/domain/entity"
)

// categoryIDSeparator はカテゴリIDを1カラムに保存する際の区切り文字です。
// カテゴリIDは数字とハイフンのみで構成されるため衝突しません。
const categoryIDSeparator = ","

// SearchHistoryModel is the GORM model for the search_histories table.
type SearchHistoryModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Label       string    `gorm:"type:text;not null;index"`
	Term        string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:16;not null"`
	CategoryIDs string    `gorm:"type:text"`
	RecipeCount int       `gorm:"not null;default:0"`
	SearchedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM.
func (SearchHistoryModel) TableName() string {
	return "search_histories"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SearchHistoryModel) ToEntity() entity.SearchRecord {
	var ids []string
	if m.CategoryIDs != "" {
		ids = strings.Split(m.CategoryIDs, categoryIDSeparator)
	}
	return entity.SearchRecord{
		ID:          m.ID,
		Label:       m.Label,
		Term:        m.Term,
		Status:      entity.LookupStatus(m.Status),
		CategoryIDs: ids,
		RecipeCount: m.RecipeCount,
		SearchedAt:  m.SearchedAt,
	}
}

// SearchHistoryModelFromEntity converts a domain entity to a GORM model.
func SearchHistoryModelFromEntity(r *entity.SearchRecord) *SearchHistoryModel {
	return &SearchHistoryModel{
		ID:          r.ID,
		Label:       r.Label,
		Term:        r.Term,
		Status:      string(r.Status),
		CategoryIDs: strings.Join(r.CategoryIDs, categoryIDSeparator),
		RecipeCount: r.RecipeCount,
		SearchedAt:  r.SearchedAt,
	}
}
