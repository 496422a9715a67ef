package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// RecipesStats returns how many recipes ownerIDRef has (all recipes when
// blank) and when the newest of them changed, for list ETags. lastModified
// is nil when there are none.
func RecipesStats(ctx context.Context, db *gorm.DB, ownerIDRef string) (count int64, lastModified *time.Time, err error) {
	return changeStamp(ownerScope(db.WithContext(ctx).Model(&domain.Recipe{}), ownerIDRef))
}

// CalendarStats is RecipesStats for ownerID's calendar entries.
func CalendarStats(ctx context.Context, db *gorm.DB, ownerID string) (count int64, lastModified *time.Time, err error) {
	return changeStamp(db.WithContext(ctx).Model(&domain.CalendarEntry{}).Where("owner_id = ?", ownerID))
}

// changeStamp counts q's rows and plucks the newest updated_at. MAX() is
// avoided because SQLite returns it as TEXT, which GORM cannot scan into
// time.Time.
func changeStamp(q *gorm.DB) (int64, *time.Time, error) {
	var n int64
	if err := q.Session(&gorm.Session{}).Count(&n).Error; err != nil || n == 0 {
		return 0, nil, err
	}
	var stamps []time.Time
	err := q.Session(&gorm.Session{}).
		Order("updated_at DESC").
		Limit(1).
		Pluck("updated_at", &stamps).Error
	if err != nil {
		return 0, nil, err
	}
	if len(stamps) == 0 {
		return n, nil, nil
	}
	return n, &stamps[0], nil
}
