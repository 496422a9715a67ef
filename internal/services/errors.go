// Package services defines the business logic for accounts, recipes, saved
// recipes, the meal calendar and the catalog. This file centralizes the
// service-level error values so they can be returned consistently by service
// methods and checked by callers.
//
// Translation into HTTP status codes and user-facing messages happens in the
// handler layer.
package services

import (
	"errors"

	"github.com/tbourn/go-mealplan-backend/internal/auth"
	"github.com/tbourn/go-mealplan-backend/internal/export"
	"github.com/tbourn/go-mealplan-backend/internal/media"
)

// Account errors.
var (
	// ErrCredentialsRequired is returned when email or pass_hash is blank.
	ErrCredentialsRequired = errors.New("email and pass_hash are required")

	// ErrCredentialTooLong is returned for a pass_hash longer than bcrypt accepts.
	ErrCredentialTooLong = errors.New("pass_hash too long")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong pass_hash.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned for a missing, expired or forged session token.
	ErrInvalidToken = auth.ErrInvalidToken
)

// Recipe errors.
var (
	ErrRecipeNotFound         = errors.New("recipe not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleTooLong           = errors.New("title too long")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrTooManyIngredients     = errors.New("too many ingredients")

	// ErrInvalidImage is returned when the uploaded image cannot be decoded.
	ErrInvalidImage = media.ErrInvalidImage
)

// Saved recipe and calendar errors.
var (
	// ErrOwnerRequired is returned when an owner id is missing.
	ErrOwnerRequired = errors.New("owner id is required")

	ErrSavedNotFound = errors.New("saved recipe not found")

	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidMeal is returned for a meal outside breakfast, lunch, dinner.
	ErrInvalidMeal = errors.New("meal must be breakfast, lunch or dinner")

	// ErrInvalidRange is returned when from is after to.
	ErrInvalidRange = errors.New("from must not be after to")

	ErrEntryNotFound = errors.New("calendar entry not found")

	// ErrUnknownFormat is returned by Export for formats other than pdf or xlsx.
	ErrUnknownFormat = export.ErrUnknownFormat
)
