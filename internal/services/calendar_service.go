// Package services – CalendarService
//
// CalendarService manages the meal calendar: one recipe per (owner, day,
// meal) slot. Writes are upserts, so assigning a recipe to an occupied slot
// replaces it in place. It also assembles 7-day plans and renders them for
// download.
package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/export"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
)

// CalendarRepo defines the repository contract required by CalendarService.
type CalendarRepo interface {
	// UpsertCalendarEntry writes recipeID into the slot, replacing any previous recipe.
	UpsertCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal, recipeID string) (*domain.CalendarEntry, error)

	// ListCalendarEntries returns entries in [from, to] ordered by date then slot.
	ListCalendarEntries(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.CalendarEntry, error)

	// DeleteCalendarEntry removes one slot or returns repo.ErrNotFound.
	DeleteCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal) error

	// RecipeExists reports whether a live recipe has id.
	RecipeExists(ctx context.Context, db *gorm.DB, id string) (bool, error)

	// CalendarStats returns the entry count and latest update for ETags.
	CalendarStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error)
}

// Document is a rendered file ready to send.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CalendarService provides calendar slot operations and week views.
type CalendarService struct {
	DB   *gorm.DB
	Repo CalendarRepo

	// Now returns the current time; Week uses it when no start day is given.
	Now func() time.Time
}

// NewCalendarService constructs a CalendarService using the wall clock.
func NewCalendarService(db *gorm.DB, r CalendarRepo) *CalendarService {
	return &CalendarService{DB: db, Repo: r, Now: time.Now}
}

// Upsert assigns recipeID to (ownerID, date, meal). date must be YYYY-MM-DD,
// meal is matched case-insensitively, and the recipe must exist.
func (s *CalendarService) Upsert(ctx context.Context, ownerID, date, meal, recipeID string) (*domain.CalendarEntry, error) {
	tr := otel.Tracer("services/CalendarService")
	ctx, span := tr.Start(ctx, "Upsert",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("date", date),
			attribute.String("meal", meal),
			attribute.String("recipe.id", recipeID),
		),
	)
	defer span.End()

	ownerID, day, m, err := parseSlot(ownerID, date, meal)
	if err != nil {
		return nil, err
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, ErrRecipeNotFound
	}
	ok, err := s.Repo.RecipeExists(ctx, s.DB, recipeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecipeNotFound
	}

	e, err := s.Repo.UpsertCalendarEntry(ctx, s.DB, ownerID, day, m, recipeID)
	if err != nil {
		return nil, err
	}
	calendarUpserts.WithLabelValues(string(m)).Inc()
	return e, nil
}

// List returns ownerID's entries between from and to inclusive; either bound
// may be empty.
func (s *CalendarService) List(ctx context.Context, ownerID, from, to string) ([]domain.CalendarEntry, error) {
	tr := otel.Tracer("services/CalendarService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("from", from),
			attribute.String("to", to),
		),
	)
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, ok := domain.ParseDay(d); !ok {
			return nil, ErrInvalidDate
		}
	}
	if from != "" && to != "" && from > to {
		return nil, ErrInvalidRange
	}

	out, err := s.Repo.ListCalendarEntries(ctx, s.DB, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.CalendarEntry{}
	}
	return out, nil
}

// Delete removes the (ownerID, date, meal) entry.
func (s *CalendarService) Delete(ctx context.Context, ownerID, date, meal string) error {
	tr := otel.Tracer("services/CalendarService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("date", date),
			attribute.String("meal", meal),
		),
	)
	defer span.End()

	ownerID, day, m, err := parseSlot(ownerID, date, meal)
	if err != nil {
		return err
	}
	err = s.Repo.DeleteCalendarEntry(ctx, s.DB, ownerID, day, m)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// Week returns the 7-day plan starting at start (today, UTC, when empty).
func (s *CalendarService) Week(ctx context.Context, ownerID, start string) (domain.WeekPlan, error) {
	tr := otel.Tracer("services/CalendarService")
	ctx, span := tr.Start(ctx, "Week",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.String("start", start),
		),
	)
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.WeekPlan{}, ErrOwnerRequired
	}
	day, err := s.startDay(start)
	if err != nil {
		return domain.WeekPlan{}, err
	}
	entries, err := s.Repo.ListCalendarEntries(ctx, s.DB, ownerID,
		domain.FormatDay(day), domain.FormatDay(day.AddDate(0, 0, 6)))
	if err != nil {
		return domain.WeekPlan{}, err
	}
	return domain.NewWeekPlan(ownerID, day, entries), nil
}

// Export renders the week starting at start as format ("pdf" or "xlsx").
func (s *CalendarService) Export(ctx context.Context, ownerID, start, format string) (*Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	plan, err := s.Week(ctx, ownerID, start)
	if err != nil {
		return nil, err
	}

	_, span := otel.Tracer("services/CalendarService").Start(ctx, "Export",
		trace.WithAttributes(attribute.String("format", string(f))))
	defer span.End()

	var buf bytes.Buffer
	if err := export.Week(&buf, plan, f); err != nil {
		return nil, err
	}
	return &Document{Filename: f.Filename(plan), ContentType: f.ContentType(), Body: buf.Bytes()}, nil
}

// Version returns ownerID's entry count and latest update time.
func (s *CalendarService) Version(ctx context.Context, ownerID string) (int64, *time.Time, error) {
	return s.Repo.CalendarStats(ctx, s.DB, ownerID)
}

func (s *CalendarService) startDay(start string) (time.Time, error) {
	if strings.TrimSpace(start) == "" {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		t := now().UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, ok := domain.ParseDay(start)
	if !ok {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

// parseSlot validates and normalizes a slot key.
func parseSlot(ownerID, date, meal string) (string, string, domain.Meal, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return "", "", "", ErrOwnerRequired
	}
	day, ok := domain.ParseDay(date)
	if !ok {
		return "", "", "", ErrInvalidDate
	}
	m, ok := domain.ParseMeal(meal)
	if !ok {
		return "", "", "", ErrInvalidMeal
	}
	return ownerID, domain.FormatDay(day), m, nil
}
