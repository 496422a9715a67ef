package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// SaveRecipe bookmarks recipeID for ownerID. Saving an already saved pair is
// not an error: the existing row is returned with created=false.
func SaveRecipe(ctx context.Context, db *gorm.DB, ownerID, recipeID string) (*domain.SavedRecipe, bool, error) {
	s := &domain.SavedRecipe{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		RecipeID:  recipeID,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "recipe_id"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return s, true, nil
	}

	var existing domain.SavedRecipe
	err := db.WithContext(ctx).
		Where("owner_id = ? AND recipe_id = ?", ownerID, recipeID).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// ListSavedRecipes returns the recipes ownerID saved, most recent save first.
// Soft-deleted recipes are skipped.
func ListSavedRecipes(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Recipe, error) {
	var out []domain.Recipe
	err := withIngredients(db.WithContext(ctx)).
		Select("recipes.*").
		Joins("JOIN saved_recipes ON saved_recipes.recipe_id = recipes.id").
		Where("saved_recipes.owner_id = ?", ownerID).
		Order("saved_recipes.created_at DESC, saved_recipes.id DESC").
		Find(&out).Error
	return out, err
}

// DeleteSavedRecipe removes the (ownerID, recipeID) bookmark, or returns
// ErrNotFound when there was none.
func DeleteSavedRecipe(ctx context.Context, db *gorm.DB, ownerID, recipeID string) error {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND recipe_id = ?", ownerID, recipeID).
		Delete(&domain.SavedRecipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
