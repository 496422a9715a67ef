package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// FindOrCreateIngredient returns the ingredient called name, inserting it
// first when missing. created reports whether this call inserted the row.
// name must already be normalized; the unique index on name settles races
// between concurrent creators (INSERT ... ON CONFLICT DO NOTHING, then read).
func FindOrCreateIngredient(ctx context.Context, db *gorm.DB, name string) (ing *domain.Ingredient, created bool, err error) {
	fresh := &domain.Ingredient{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(fresh)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return fresh, true, nil
	}

	var existing domain.Ingredient
	if err := db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// CreateRecipeIngredient links recipeID to ingredientID. Linking the same
// pair twice returns ErrDuplicate.
func CreateRecipeIngredient(ctx context.Context, db *gorm.DB, recipeID, ingredientID, quantity string, position int) (*domain.RecipeIngredient, error) {
	link := &domain.RecipeIngredient{
		ID:           uuid.NewString(),
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Quantity:     quantity,
		Position:     position,
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(link).Error; err != nil {
		return nil, mapDuplicate(err)
	}
	return link, nil
}
