// Package domain defines the persistence models for users, recipes,
// ingredients, saved recipes, meal-calendar entries and the read-only
// catalog. These types are mapped with GORM and form the core data layer of
// the meal planner.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is a registered account. Email is stored case-folded and is unique.
// PassHash holds a bcrypt digest of the credential the client submits; it is
// never serialized.
type User struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(120);not null;default:''"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PassHash  string    `json:"-"          gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Recipe is a user-submitted recipe. Image holds the normalized JPEG bytes
// (or nil) and is exposed to clients base64-encoded by the HTTP layer.
//
// Fields:
//   - OwnerIDRef: id of the submitting user; indexed with CreatedAt for
//     per-owner listings.
//   - IsPublic: whether the recipe shows up in community search.
//   - Ingredients: ordered join rows, cascade-deleted with the recipe.
type Recipe struct {
	ID           string         `json:"id"           gorm:"type:char(36);primaryKey"`
	Title        string         `json:"title"        gorm:"type:varchar(200);not null"`
	Description  string         `json:"description"  gorm:"type:text;not null;default:''"`
	Instructions string         `json:"instructions" gorm:"type:text;not null;default:''"`
	Image        []byte         `json:"-"            gorm:"type:blob"`
	ImageType    string         `json:"image_type,omitempty" gorm:"type:varchar(32);not null;default:''"`
	OwnerIDRef   string         `json:"owner_id_ref" gorm:"type:varchar(64);not null;index:idx_recipes_owner,priority:1"`
	IsPublic     bool           `json:"is_public"    gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"   gorm:"index:idx_recipes_owner,priority:2"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"            gorm:"index"`

	Ingredients []RecipeIngredient `json:"ingredients" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// Ingredient is a canonical ingredient, de-duplicated by normalized name.
type Ingredient struct {
	ID        string    `json:"id"   gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(120);not null;uniqueIndex:ux_ingredients_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// RecipeIngredient links a recipe to an ingredient with a free-text quantity.
// A recipe lists each ingredient at most once; Position keeps the order the
// author entered them in.
type RecipeIngredient struct {
	ID           string `json:"-"        gorm:"type:char(36);primaryKey"`
	RecipeID     string `json:"-"        gorm:"type:char(36);not null;uniqueIndex:ux_recipe_ingredient,priority:1"`
	IngredientID string `json:"-"        gorm:"type:char(36);not null;uniqueIndex:ux_recipe_ingredient,priority:2;index"`
	Quantity     string `json:"quantity" gorm:"type:varchar(64);not null;default:''"`
	Position     int    `json:"position" gorm:"not null;default:0"`

	Ingredient Ingredient `json:"ingredient" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for RecipeIngredient.
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// SavedRecipe records that an owner bookmarked a recipe. The pair
// (owner_id, recipe_id) is unique.
type SavedRecipe struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	OwnerID   string    `json:"owner_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_saved_owner_recipe,priority:1"`
	RecipeID  string    `json:"recipe_id" gorm:"type:char(36);not null;uniqueIndex:ux_saved_owner_recipe,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`

	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SavedRecipe.
func (SavedRecipe) TableName() string { return "saved_recipes" }

// CalendarEntry assigns a recipe to one meal slot of one day for an owner.
// The natural key (owner_id, date_saved, meal) is unique: writing to an
// occupied slot replaces its recipe instead of adding a row.
type CalendarEntry struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	OwnerID   string    `json:"owner_id"   gorm:"type:varchar(64);not null;uniqueIndex:ux_calendar_slot,priority:1"`
	DateSaved string    `json:"date_saved" gorm:"type:char(10);not null;uniqueIndex:ux_calendar_slot,priority:2"`
	Meal      Meal      `json:"meal"       gorm:"type:varchar(16);not null;uniqueIndex:ux_calendar_slot,priority:3;check:meal IN ('breakfast','lunch','dinner')"`
	RecipeID  string    `json:"recipe_id"  gorm:"type:char(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Recipe Recipe `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for CalendarEntry.
func (CalendarEntry) TableName() string { return "calendar_entries" }

// CatalogItem is a shop product. The catalog is read-only over HTTP and is
// loaded from a seed file.
type CatalogItem struct {
	ID         string    `json:"id"          gorm:"type:varchar(64);primaryKey"        yaml:"id"`
	Name       string    `json:"name"        gorm:"type:varchar(200);not null"         yaml:"name"`
	PriceCents int64     `json:"price_cents" gorm:"not null;default:0;check:price_cents >= 0" yaml:"price_cents"`
	Currency   string    `json:"currency"    gorm:"type:char(3);not null;default:'USD'" yaml:"currency"`
	Category   string    `json:"category"    gorm:"type:varchar(64);not null;default:'';index" yaml:"category"`
	ImageURL   string    `json:"image_url"   gorm:"type:varchar(512);not null;default:''" yaml:"image_url"`
	Link       string    `json:"link"        gorm:"type:varchar(512);not null;default:''" yaml:"link"`
	CreatedAt  time.Time `json:"-"           yaml:"-"`
	UpdatedAt  time.Time `json:"-"           yaml:"-"`
}

// TableName returns the database table name for CatalogItem.
func (CatalogItem) TableName() string { return "catalog_items" }

var currencySymbols = map[string]string{"USD": "$", "EUR": "€", "GBP": "£"}

// DisplayPrice formats PriceCents for people: "$39.99", or "39.99 CHF" for
// currencies without a known symbol.
func (it CatalogItem) DisplayPrice() string {
	cents, sign := it.PriceCents, ""
	if cents < 0 {
		cents, sign = -cents, "-"
	}
	amount := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	code := strings.ToUpper(strings.TrimSpace(it.Currency))
	if sym, ok := currencySymbols[code]; ok {
		return sign + sym + amount
	}
	if code == "" {
		return sign + amount
	}
	return sign + amount + " " + code
}

// MarshalJSON adds the derived "price" display string next to price_cents.
func (it CatalogItem) MarshalJSON() ([]byte, error) {
	type plain CatalogItem
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain(it), it.DisplayPrice()})
}

// Video is a cooking/learning video shown on the learn page.
type Video struct {
	ID              string    `json:"id"               gorm:"type:varchar(64);primaryKey"  yaml:"id"`
	Title           string    `json:"title"            gorm:"type:varchar(200);not null"   yaml:"title"`
	URL             string    `json:"url"              gorm:"type:varchar(512);not null"   yaml:"url"`
	ThumbnailURL    string    `json:"thumbnail_url"    gorm:"type:varchar(512);not null;default:''" yaml:"thumbnail_url"`
	Category        string    `json:"category"         gorm:"type:varchar(64);not null;default:'';index" yaml:"category"`
	DurationSeconds int       `json:"duration_seconds" gorm:"not null;default:0"          yaml:"duration_seconds"`
	CreatedAt       time.Time `json:"-"                yaml:"-"`
	UpdatedAt       time.Time `json:"-"                yaml:"-"`
}

// TableName returns the database table name for Video.
func (Video) TableName() string { return "videos" }
