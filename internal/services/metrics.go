package services

import "github.com/prometheus/client_golang/prometheus"

// Domain counters, served next to the HTTP metrics on /metrics.
var (
	// recipesCreated counts committed recipe creations (replays excluded).
	recipesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mealplan_recipes_created_total",
			Help: "Total number of recipes created.",
		},
	)

	// ingredientsCreated counts ingredients first seen while creating recipes.
	ingredientsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mealplan_ingredients_created_total",
			Help: "Total number of new ingredients created by recipe submissions.",
		},
	)

	// calendarUpserts counts calendar writes by meal slot.
	calendarUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplan_calendar_upserts_total",
			Help: "Total number of calendar slot writes.",
		},
		[]string{"meal"},
	)

	// catalogCache counts catalog cache lookups by kind (items|videos) and result (hit|miss|error).
	catalogCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mealplan_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(recipesCreated, ingredientsCreated, calendarUpserts, catalogCache)
}
