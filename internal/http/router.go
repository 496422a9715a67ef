// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// authentication, idempotency, rate limiting, CORS, security headers and
// compression.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic router setup; all dependencies injected
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/auth"
	"github.com/tbourn/go-mealplan-backend/internal/cache"
	"github.com/tbourn/go-mealplan-backend/internal/config"
	"github.com/tbourn/go-mealplan-backend/internal/docs"
	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/http/handlers"
	"github.com/tbourn/go-mealplan-backend/internal/http/middleware"
	"github.com/tbourn/go-mealplan-backend/internal/media"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
	"github.com/tbourn/go-mealplan-backend/internal/search"
	"github.com/tbourn/go-mealplan-backend/internal/services"
)

// calendarRepoShim adapts the repository free functions to the
// services.CalendarRepo interface expected by the CalendarService.
type calendarRepoShim struct{}

// UpsertCalendarEntry proxies repo.UpsertCalendarEntry.
func (calendarRepoShim) UpsertCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal, recipeID string) (*domain.CalendarEntry, error) {
	return repo.UpsertCalendarEntry(ctx, db, ownerID, date, meal, recipeID)
}

// ListCalendarEntries proxies repo.ListCalendarEntries.
func (calendarRepoShim) ListCalendarEntries(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.CalendarEntry, error) {
	return repo.ListCalendarEntries(ctx, db, ownerID, from, to)
}

// DeleteCalendarEntry proxies repo.DeleteCalendarEntry.
func (calendarRepoShim) DeleteCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal) error {
	return repo.DeleteCalendarEntry(ctx, db, ownerID, date, meal)
}

// RecipeExists proxies repo.RecipeExists.
func (calendarRepoShim) RecipeExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.RecipeExists(ctx, db, id)
}

// CalendarStats proxies repo.CalendarStats (ETag support).
func (calendarRepoShim) CalendarStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.CalendarStats(ctx, db, ownerID)
}

// accountRateRule allows a burst of 5 login or register attempts, then one
// every 5 seconds.
var accountRateRule = middleware.RateRule{RPS: 0.2, Burst: 5}

// Deps carries the long-lived collaborators built by the entrypoint.
type Deps struct {
	DB     *gorm.DB
	Index  *search.Live
	Tokens *auth.Tokens

	// Cache is optional; nil disables catalog caching.
	Cache cache.Cache
}

// NewServices builds the application services from cfg and deps. The
// entrypoint uses the result for startup work (reindexing, catalog seeding)
// before handing it to RegisterRoutes.
func NewServices(d Deps, cfg config.Config) *Services {
	authSvc := services.NewAuthService(d.DB, d.Tokens)

	recipeSvc := services.NewRecipeService(d.DB, d.Index)
	recipeSvc.Images = media.Normalizer{MaxWidth: cfg.Image.MaxWidth, Quality: cfg.Image.JPEGQuality}
	recipeSvc.PublicBaseURL = cfg.PublicBaseURL
	recipeSvc.MinScore = cfg.SearchMinScore
	recipeSvc.IdempotencyTTL = cfg.IdempotencyTTL

	return &Services{
		Auth:     authSvc,
		Recipe:   recipeSvc,
		Saved:    &services.SavedService{DB: d.DB},
		Calendar: services.NewCalendarService(d.DB, calendarRepoShim{}),
		Catalog:  &services.CatalogService{DB: d.DB, Cache: d.Cache, TTL: cfg.Cache.CatalogTTL},
	}
}

// Services groups the service layer.
type Services struct {
	Auth     *services.AuthService
	Recipe   *services.RecipeService
	Saved    *services.SavedService
	Calendar *services.CalendarService
	Catalog  *services.CatalogService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Authenticate (bearer token → user id)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS, security headers and gzip
func RegisterRoutes(r *gin.Engine, db *gorm.DB, svc *Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	base := cfg.APIBasePath
	if base == "/" {
		base = ""
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		MaskQuery:  []string{"pass_hash"},
		QuietPaths: []string{"/health", "/metrics"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (multipart recipe uploads are the largest bodies)
	maxBody := cfg.MaxUploadBytes
	if maxBody <= 0 {
		maxBody = 8 << 20
	}
	r.Use(limitBody(maxBody))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Bearer tokens
	r.Use(middleware.Authenticate(svc.Auth.Authenticate))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scopes: map[string]string{
				http.MethodPost + " " + base + "/recipe": domain.ScopeRecipeCreate,
			},
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return rec != nil, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP; account endpoints get a
	// tighter budget of their own.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).
		Route(http.MethodPost, base+"/login", accountRateRule).
		Route(http.MethodPost, base+"/register", accountRateRule)
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization",
		"If-None-Match", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "Content-Disposition", "ETag", middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers; catalog reads are shared and may be cached by proxies.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:     cfg.Security.EnableHSTS,
		HSTSMaxAge:     cfg.Security.HSTSMaxAge,
		NoStore:        true,
		EnablePolicy:   true,
		PublicPrefixes: []string{base + "/items", base + "/videos"},
		PublicMaxAge:   cfg.Cache.CatalogTTL,
	}))

	// PNG, JPEG and exports are already compressed.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`/qr$`, `/export$`}),
	))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(svc.Auth, svc.Recipe, svc.Saved, svc.Calendar, svc.Catalog)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Accounts
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)

		// Reads are public
		api.GET("/recipe", h.ListRecipes)
		api.GET("/recipe/search", h.SearchRecipes)
		api.GET("/recipe/:id", h.GetRecipe)
		api.GET("/recipe/:id/qr", h.RecipeQR)
		api.GET("/saveRecipe", h.ListSaved)
		api.GET("/calendar", h.ListCalendar)
		api.GET("/calendar/week", h.CalendarWeek)
		api.GET("/calendar/week/export", h.ExportCalendarWeek)

		// Catalog (POST kept for existing clients)
		api.POST("/items", h.ListItems)
		api.GET("/items", h.ListItems)
		api.POST("/videos", h.ListVideos)
		api.GET("/videos", h.ListVideos)

		// Writes
		w := api.Group("", middleware.RequireAuth(cfg.Auth.Required))
		w.POST("/recipe", h.CreateRecipe)
		w.POST("/saveRecipe", h.SaveRecipe)
		w.DELETE("/saveRecipe/:owner_id/:recipe_id", h.RemoveSaved)
		w.POST("/calendar", h.UpsertCalendar)
		w.DELETE("/calendar/:owner_id/:date_saved/:meal", h.DeleteCalendar)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
