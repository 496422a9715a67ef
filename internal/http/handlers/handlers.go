// Package handlers exposes the REST endpoints of the meal planner.
//
// Handlers are transport-thin: they validate input, call application
// services through the interfaces below, and translate results and service
// errors into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/http/middleware"
	"github.com/tbourn/go-mealplan-backend/internal/services"
	"github.com/tbourn/go-mealplan-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, name, email, passHash string) (*domain.User, error)
	// Login returns the stored user and a signed session token.
	Login(ctx context.Context, email, passHash string) (*domain.User, string, error)
}

// RecipeService defines recipe creation, listing and sharing.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecipeService interface {
	// Create persists a recipe; replayed is true when an earlier request with
	// the same idempotency key produced the result.
	Create(ctx context.Context, in services.RecipeInput) (r *domain.Recipe, replayed bool, err error)
	List(ctx context.Context, ownerIDRef string, page, pageSize int) ([]domain.Recipe, int64, error)
	// Version returns the count and latest update used for ETags.
	Version(ctx context.Context, ownerIDRef string) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.Recipe, error)
	Search(ctx context.Context, q string, k int) ([]services.RecipeHit, error)
	ShareQR(ctx context.Context, id string, size int) ([]byte, error)
}

// SavedService bookmarks recipes per owner.
type SavedService interface {
	Save(ctx context.Context, ownerID, recipeID string) (*domain.SavedRecipe, bool, error)
	List(ctx context.Context, ownerID string) ([]domain.Recipe, error)
	Remove(ctx context.Context, ownerID, recipeID string) error
}

// CalendarService manages meal calendar slots.
type CalendarService interface {
	Upsert(ctx context.Context, ownerID, date, meal, recipeID string) (*domain.CalendarEntry, error)
	List(ctx context.Context, ownerID, from, to string) ([]domain.CalendarEntry, error)
	Delete(ctx context.Context, ownerID, date, meal string) error
	Week(ctx context.Context, ownerID, start string) (domain.WeekPlan, error)
	Export(ctx context.Context, ownerID, start, format string) (*services.Document, error)
	Version(ctx context.Context, ownerID string) (int64, *time.Time, error)
}

// CatalogService lists the read-only catalog.
type CatalogService interface {
	Items(ctx context.Context, category string) ([]domain.CatalogItem, error)
	Videos(ctx context.Context, category string) ([]domain.Video, error)
}

//
// Handler wiring
//

// Handlers groups all HTTP endpoints.
type Handlers struct {
	authSvc    AuthService
	recipeSvc  RecipeService
	savedSvc   SavedService
	calSvc     CalendarService
	catalogSvc CatalogService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(authSvc AuthService, recipeSvc RecipeService, savedSvc SavedService, calSvc CalendarService, catalogSvc CatalogService) *Handlers {
	return &Handlers{
		authSvc:    authSvc,
		recipeSvc:  recipeSvc,
		savedSvc:   savedSvc,
		calSvc:     calSvc,
		catalogSvc: catalogSvc,
	}
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// RecipeView is the wire form of a recipe: the image bytes are inlined as
// base64.
type RecipeView struct {
	domain.Recipe
	// Image is the base64 (standard encoding) JPEG, omitted when absent.
	Image string `json:"image,omitempty" example:"/9j/4AAQSkZJRgABAQ..."`
}

func toView(r *domain.Recipe) RecipeView {
	v := RecipeView{Recipe: *r}
	if len(r.Image) > 0 {
		v.Image = base64.StdEncoding.EncodeToString(r.Image)
	}
	return v
}

func toViews(in []domain.Recipe) []RecipeView {
	out := make([]RecipeView, 0, len(in))
	for i := range in {
		out = append(out, toView(&in[i]))
	}
	return out
}

//
// Helpers
//

// clampPagination reads page and page_size: 20 per page by default, at
// most 100.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"), 20, 100)
}

// resolveOwner applies the token subject to an owner id taken from the
// request. A blank owner defaults to the subject; a different owner is
// rejected with 403. Without a token the owner passes through unchanged.
func resolveOwner(c *gin.Context, owner string) (string, bool) {
	sub, authed := middleware.AuthSubject(c)
	if !authed {
		return owner, true
	}
	if owner == "" {
		return sub, true
	}
	if owner != sub {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "owner does not match the authenticated user")
		return "", false
	}
	return owner, true
}

// failService maps service errors shared by several endpoints; anything
// unknown becomes a 500 with fallbackCode.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrRecipeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")
	case errors.Is(err, services.ErrSavedNotFound),
		errors.Is(err, services.ErrEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrOwnerRequired),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidMeal),
		errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, services.ErrUnknownFormat),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleTooLong),
		errors.Is(err, services.ErrIngredientNameRequired),
		errors.Is(err, services.ErrTooManyIngredients),
		errors.Is(err, services.ErrCredentialsRequired),
		errors.Is(err, services.ErrCredentialTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidImage):
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "image could not be decoded")
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeEmailTaken, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	default:
		failInternal(c, fallbackCode, err)
	}
}
