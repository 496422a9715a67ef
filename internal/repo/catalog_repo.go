package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// ListCatalogItems returns shop items, filtered by category when non-empty,
// ordered by name.
func ListCatalogItems(ctx context.Context, db *gorm.DB, category string) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	err := categoryScope(db.WithContext(ctx), category).
		Order("name ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListVideos returns videos, filtered by category when non-empty, ordered
// by title.
func ListVideos(ctx context.Context, db *gorm.DB, category string) ([]domain.Video, error) {
	var out []domain.Video
	err := categoryScope(db.WithContext(ctx), category).
		Order("title ASC, id ASC").
		Find(&out).Error
	return out, err
}

// UpsertCatalogItems inserts items or overwrites existing rows with the same id.
func UpsertCatalogItems(ctx context.Context, db *gorm.DB, items []domain.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&items).Error
}

// UpsertVideos inserts videos or overwrites existing rows with the same id.
func UpsertVideos(ctx context.Context, db *gorm.DB, videos []domain.Video) error {
	if len(videos) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&videos).Error
}

func categoryScope(q *gorm.DB, category string) *gorm.DB {
	if category == "" {
		return q
	}
	return q.Where("category = ?", category)
}
