// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for meal-calendar
// entries, addressed by their natural key (owner_id, date_saved, meal).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// mealOrder sorts slots breakfast < lunch < dinner.
const mealOrder = "CASE meal WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END"

// UpsertCalendarEntry assigns recipeID to the (ownerID, date, meal) slot in
// a single statement: INSERT ... ON CONFLICT(owner_id, date_saved, meal)
// DO UPDATE SET recipe_id, updated_at. The stored row (whose id is stable
// across updates) is returned.
func UpsertCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal, recipeID string) (*domain.CalendarEntry, error) {
	now := time.Now().UTC()
	e := &domain.CalendarEntry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		DateSaved: date,
		Meal:      meal,
		RecipeID:  recipeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "date_saved"}, {Name: "meal"}},
			DoUpdates: clause.AssignmentColumns([]string{"recipe_id", "updated_at"}),
		}).
		Create(e).Error
	if err != nil {
		return nil, err
	}
	return GetCalendarEntry(ctx, db, ownerID, date, meal)
}

// GetCalendarEntry loads one slot, or ErrNotFound.
func GetCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal) (*domain.CalendarEntry, error) {
	var e domain.CalendarEntry
	err := db.WithContext(ctx).
		Where("owner_id = ? AND date_saved = ? AND meal = ?", ownerID, date, meal).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListCalendarEntries returns ownerID's entries ordered by date then slot.
// from and to are inclusive YYYY-MM-DD bounds; empty means unbounded. The
// lexical order of the date format matches chronological order.
//
// Each entry's Recipe is preloaded with its id and title only.
func ListCalendarEntries(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.CalendarEntry, error) {
	q := db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if from != "" {
		q = q.Where("date_saved >= ?", from)
	}
	if to != "" {
		q = q.Where("date_saved <= ?", to)
	}
	var out []domain.CalendarEntry
	err := q.
		Preload("Recipe", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title")
		}).
		Order("date_saved ASC").
		Order(mealOrder).
		Find(&out).Error
	return out, err
}

// DeleteCalendarEntry removes exactly the (ownerID, date, meal) entry. It
// returns ErrNotFound when the slot was empty.
func DeleteCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal) error {
	res := db.WithContext(ctx).
		Where("owner_id = ? AND date_saved = ? AND meal = ?", ownerID, date, meal).
		Delete(&domain.CalendarEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
