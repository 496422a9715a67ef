package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
)

// SavedService manages an owner's list of bookmarked recipes.
type SavedService struct {
	DB *gorm.DB
}

// Save bookmarks recipeID for ownerID. created is false when the pair was
// already saved; the existing row is returned in that case.
func (s *SavedService) Save(ctx context.Context, ownerID, recipeID string) (*domain.SavedRecipe, bool, error) {
	tr := otel.Tracer("services/SavedService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("recipe.id", recipeID),
		),
	)
	defer span.End()

	ownerID, recipeID = strings.TrimSpace(ownerID), strings.TrimSpace(recipeID)
	if ownerID == "" {
		return nil, false, ErrOwnerRequired
	}
	if recipeID == "" {
		return nil, false, ErrRecipeNotFound
	}

	var (
		out     *domain.SavedRecipe
		created bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.RecipeExists(ctx, tx, recipeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRecipeNotFound
		}
		out, created, err = repo.SaveRecipe(ctx, tx, ownerID, recipeID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// List returns the recipes ownerID saved, newest save first.
func (s *SavedService) List(ctx context.Context, ownerID string) ([]domain.Recipe, error) {
	tr := otel.Tracer("services/SavedService")
	ctx, span := tr.Start(ctx, "List", trace.WithAttributes(attribute.String("owner.id", ownerID)))
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	out, err := repo.ListSavedRecipes(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Recipe{}
	}
	return out, nil
}

// Remove deletes the bookmark, or returns ErrSavedNotFound.
func (s *SavedService) Remove(ctx context.Context, ownerID, recipeID string) error {
	tr := otel.Tracer("services/SavedService")
	ctx, span := tr.Start(ctx, "Remove",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("recipe.id", recipeID),
		),
	)
	defer span.End()

	err := repo.DeleteSavedRecipe(ctx, s.DB, strings.TrimSpace(ownerID), strings.TrimSpace(recipeID))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrSavedNotFound
	}
	return err
}
