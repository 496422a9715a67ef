package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

func TestRecipesStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, _, err := RecipesStats(context.Background(), db, "u1")
	if err == nil {
		t.Fatalf("expected error due to missing recipes table")
	}
}

func TestRecipesStats_ZeroRows(t *testing.T) {
	db := newSchemaDB(t)
	count, maxAt, err := RecipesStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("RecipesStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestRecipesStats_FilterAndMax(t *testing.T) {
	db := newSchemaDB(t)

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for u1
	t3 := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)   // other owner, global max

	mustCreate(t, db, &domain.Recipe{ID: "r1", Title: "a", OwnerIDRef: "u1", CreatedAt: t1, UpdatedAt: t1})
	mustCreate(t, db, &domain.Recipe{ID: "r2", Title: "b", OwnerIDRef: "u1", CreatedAt: t2, UpdatedAt: t2})
	mustCreate(t, db, &domain.Recipe{ID: "r3", Title: "c", OwnerIDRef: "u2", CreatedAt: t3, UpdatedAt: t3})

	count, maxAt, err := RecipesStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("RecipesStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxUpdatedAt %v, got %v", t2, maxAt)
	}

	count, maxAt, err = RecipesStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("RecipesStats(all) error: %v", err)
	}
	if count != 3 || maxAt == nil || !maxAt.Equal(t3) {
		t.Fatalf("expected (3, %v), got (%d, %v)", t3, count, maxAt)
	}
}

func TestCalendarStats_ScopedToOwner(t *testing.T) {
	db := newSchemaDB(t)
	mustCreate(t, db, &domain.Recipe{ID: "r1", Title: "a", OwnerIDRef: "u1"})

	t1 := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	mustCreate(t, db, &domain.CalendarEntry{ID: "e1", OwnerID: "o1", DateSaved: "2025-06-01", Meal: domain.MealLunch, RecipeID: "r1", CreatedAt: t1, UpdatedAt: t1})
	mustCreate(t, db, &domain.CalendarEntry{ID: "e2", OwnerID: "o2", DateSaved: "2025-06-01", Meal: domain.MealLunch, RecipeID: "r1", CreatedAt: t2, UpdatedAt: t2})

	count, maxAt, err := CalendarStats(context.Background(), db, "o1")
	if err != nil {
		t.Fatalf("CalendarStats error: %v", err)
	}
	if count != 1 || maxAt == nil || !maxAt.Equal(t1) {
		t.Fatalf("expected (1, %v), got (%d, %v)", t1, count, maxAt)
	}
}
