// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Recipe model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: persistence and query composition only.
//
// Functions:
//
//   - CreateRecipe(ctx, db, r) -> error
//     Inserts the recipe row only; ingredient links are written separately
//     (see CreateRecipeIngredient) so the service can run both in one tx.
//
//   - CountRecipes / ListRecipesPage(ctx, db, ownerIDRef, ...)
//     Owner-filtered when ownerIDRef is non-empty, otherwise global.
//     Newest first, ingredients preloaded in author order.
//
//   - GetRecipe(ctx, db, id) -> *domain.Recipe, error
//     ErrNotFound when missing or soft-deleted.
//
//   - ListPublicRecipes(ctx, db) -> []domain.Recipe, error
//     Every public recipe without image bytes, used to build the search index.
//
//   - RecipeTitles(ctx, db, ids) -> map[id]title, error
//     Resolves search hits to display titles.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// CreateRecipe inserts r. A missing ID is filled with a UUID and timestamps
// are set to UTC now. Associations in r.Ingredients are NOT written.
func CreateRecipe(ctx context.Context, db *gorm.DB, r *domain.Recipe) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	return db.WithContext(ctx).Omit(clause.Associations).Create(r).Error
}

// CountRecipes returns the number of live recipes, scoped to ownerIDRef
// when it is non-empty.
func CountRecipes(ctx context.Context, db *gorm.DB, ownerIDRef string) (int64, error) {
	var total int64
	err := ownerScope(db.WithContext(ctx).Model(&domain.Recipe{}), ownerIDRef).
		Count(&total).Error
	return total, err
}

// ListRecipesPage returns a page of recipes ordered newest first (ties by id).
// The caller computes offset and limit.
func ListRecipesPage(ctx context.Context, db *gorm.DB, ownerIDRef string, offset, limit int) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := withIngredients(ownerScope(db.WithContext(ctx), ownerIDRef)).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetRecipe fetches a single recipe with its ingredients.
func GetRecipe(ctx context.Context, db *gorm.DB, id string) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := withIngredients(db.WithContext(ctx)).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// RecipeExists reports whether a live recipe with id exists.
func RecipeExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// ListPublicRecipes returns all public recipes with ingredients but without
// image bytes.
func ListPublicRecipes(ctx context.Context, db *gorm.DB) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := withIngredients(db.WithContext(ctx)).
		Omit("image").
		Where("is_public = ?", true).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// RecipeTitles maps each live id in ids to its title. Unknown ids are absent
// from the result.
func RecipeTitles(ctx context.Context, db *gorm.DB, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID    string
		Title string
	}
	err := db.WithContext(ctx).Model(&domain.Recipe{}).
		Select("id", "title").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.Title
	}
	return out, nil
}

func ownerScope(q *gorm.DB, ownerIDRef string) *gorm.DB {
	if ownerIDRef == "" {
		return q
	}
	return q.Where("owner_id_ref = ?", ownerIDRef)
}

// withIngredients preloads join rows in position order and their ingredient.
func withIngredients(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, id ASC")
		}).
		Preload("Ingredients.Ingredient")
}
