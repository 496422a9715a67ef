package domain

import (
	"strings"
	"time"
)

// DayLayout is the wire and storage format of calendar dates.
const DayLayout = "2006-01-02"

// Meal is one of the three daily meal slots.
type Meal string

// Meal slots in display order.
const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
)

// Meals lists the slots of a day in order.
var Meals = []Meal{MealBreakfast, MealLunch, MealDinner}

// ParseMeal normalizes s (trim, case-fold) and reports whether it names a slot.
func ParseMeal(s string) (Meal, bool) {
	m := Meal(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MealBreakfast, MealLunch, MealDinner:
		return m, true
	}
	return "", false
}

// Rank returns the slot's position within a day (0 for breakfast), or -1.
func (m Meal) Rank() int {
	for i, v := range Meals {
		if v == m {
			return i
		}
	}
	return -1
}

// ParseDay parses a YYYY-MM-DD date at UTC midnight.
func ParseDay(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(DayLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDay renders t in DayLayout.
func FormatDay(t time.Time) string { return t.Format(DayLayout) }

// WeekSlot is one meal slot of a WeekPlan. RecipeID is empty when nothing is
// planned.
type WeekSlot struct {
	Meal        Meal   `json:"meal"`
	RecipeID    string `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title"`
}

// WeekDay holds the three slots of one date, in Meals order.
type WeekDay struct {
	Date  string     `json:"date"`
	Slots []WeekSlot `json:"slots"`
}

// WeekPlan is a 7-day by 3-slot view of an owner's calendar starting at Start.
type WeekPlan struct {
	OwnerID string    `json:"owner_id"`
	Start   string    `json:"start"`
	Days    []WeekDay `json:"days"`
}

// NewWeekPlan builds an empty plan of 7 consecutive days starting at start,
// then fills slots from entries that fall inside the week.
func NewWeekPlan(ownerID string, start time.Time, entries []CalendarEntry) WeekPlan {
	p := WeekPlan{OwnerID: ownerID, Start: FormatDay(start), Days: make([]WeekDay, 7)}
	pos := make(map[string]int, 7)
	for i := range p.Days {
		d := FormatDay(start.AddDate(0, 0, i))
		pos[d] = i
		slots := make([]WeekSlot, len(Meals))
		for j, m := range Meals {
			slots[j] = WeekSlot{Meal: m}
		}
		p.Days[i] = WeekDay{Date: d, Slots: slots}
	}
	for _, e := range entries {
		i, ok := pos[e.DateSaved]
		r := e.Meal.Rank()
		if !ok || r < 0 {
			continue
		}
		p.Days[i].Slots[r].RecipeID = e.RecipeID
		p.Days[i].Slots[r].RecipeTitle = e.Recipe.Title
	}
	return p
}

// End returns the last date covered by the plan.
func (p WeekPlan) End() string {
	if len(p.Days) == 0 {
		return p.Start
	}
	return p.Days[len(p.Days)-1].Date
}
