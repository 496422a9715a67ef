package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-mealplan-backend/internal/auth"
	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/http/middleware"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
	"github.com/tbourn/go-mealplan-backend/internal/search"
	"github.com/tbourn/go-mealplan-backend/internal/services"
)

// ---------- test DB + repo shim ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.CalendarRepo using the repo package (like router.go)
type testCalendarRepo struct{}

func (testCalendarRepo) UpsertCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal, recipeID string) (*domain.CalendarEntry, error) {
	return repo.UpsertCalendarEntry(ctx, db, ownerID, date, meal, recipeID)
}

func (testCalendarRepo) ListCalendarEntries(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.CalendarEntry, error) {
	return repo.ListCalendarEntries(ctx, db, ownerID, from, to)
}

func (testCalendarRepo) DeleteCalendarEntry(ctx context.Context, db *gorm.DB, ownerID, date string, meal domain.Meal) error {
	return repo.DeleteCalendarEntry(ctx, db, ownerID, date, meal)
}

func (testCalendarRepo) RecipeExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.RecipeExists(ctx, db, id)
}

func (testCalendarRepo) CalendarStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.CalendarStats(ctx, db, ownerID)
}

// ---------- full stack over sqlite ----------

const testSecret = "handler-test-secret"

type testEnv struct {
	db     *gorm.DB
	tokens *auth.Tokens
	h      *Handlers
	r      *gin.Engine
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlerDB(t)
	tokens := auth.NewTokens(testSecret, time.Hour)

	authSvc := services.NewAuthService(db, tokens)
	authSvc.Cost = bcrypt.MinCost
	recipeSvc := services.NewRecipeService(db, search.NewLive())
	recipeSvc.PublicBaseURL = "https://meals.example"
	calSvc := services.NewCalendarService(db, testCalendarRepo{})
	calSvc.Now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }

	h := New(authSvc, recipeSvc, &services.SavedService{DB: db}, calSvc, &services.CatalogService{DB: db})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Authenticate(authSvc.Authenticate))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		Scopes: map[string]string{"POST /api/recipe": domain.ScopeRecipeCreate},
	}, nil))
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/recipe", h.CreateRecipe)
	api.GET("/recipe", h.ListRecipes)
	api.GET("/recipe/search", h.SearchRecipes)
	api.GET("/recipe/:id", h.GetRecipe)
	api.GET("/recipe/:id/qr", h.RecipeQR)
	api.POST("/saveRecipe", h.SaveRecipe)
	api.GET("/saveRecipe", h.ListSaved)
	api.DELETE("/saveRecipe/:owner_id/:recipe_id", h.RemoveSaved)
	api.GET("/calendar", h.ListCalendar)
	api.POST("/calendar", h.UpsertCalendar)
	api.DELETE("/calendar/:owner_id/:date_saved/:meal", h.DeleteCalendar)
	api.GET("/calendar/week", h.CalendarWeek)
	api.GET("/calendar/week/export", h.ExportCalendarWeek)
	api.POST("/items", h.ListItems)
	api.GET("/items", h.ListItems)
	api.POST("/videos", h.ListVideos)
	api.GET("/videos", h.ListVideos)

	return &testEnv{db: db, tokens: tokens, h: h, r: r}
}

// do sends a JSON request; body may be nil. Extra headers are name/value pairs.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + tok
}

func (e *testEnv) seedRecipe(t *testing.T, owner, title string) string {
	t.Helper()
	id := uuid.NewString()
	if err := e.db.Create(&domain.Recipe{ID: id, Title: title, OwnerIDRef: owner, IsPublic: true}).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return id
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// ---------- helpers-only tests ----------

func Test_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		q          string
		page, size int
	}{
		{"", 1, 20},
		{"?page=0&page_size=0", 1, 1},
		{"?page=3&page_size=1000", 3, 100},
		{"?page=x&page_size=y", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.q, nil)
		p, ps := clampPagination(c)
		if p != tc.page || ps != tc.size {
			t.Fatalf("%q: got (%d,%d) want (%d,%d)", tc.q, p, ps, tc.page, tc.size)
		}
	}
}

func Test_newPagination(t *testing.T) {
	p := newPagination(2, 10, 25)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("unexpected: %+v", p)
	}
	p = newPagination(1, 20, 0)
	if p.TotalPages != 0 || p.HasNext {
		t.Fatalf("unexpected empty: %+v", p)
	}
}

func Test_toView_InlinesImage(t *testing.T) {
	v := toView(&domain.Recipe{ID: "r", Image: []byte{0xff, 0xd8}, ImageType: "image/jpeg"})
	if v.Image != "/9g=" {
		t.Fatalf("image not base64: %q", v.Image)
	}
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["image"] != "/9g=" || m["id"] != "r" || m["image_type"] != "image/jpeg" {
		t.Fatalf("wire form wrong: %s", b)
	}
	if _, present := m["image"]; !present {
		t.Fatalf("image missing")
	}
	empty, _ := json.Marshal(toView(&domain.Recipe{ID: "r2"}))
	if bytes.Contains(empty, []byte(`"image"`)) {
		t.Fatalf("empty image should be omitted: %s", empty)
	}
}

func Test_resolveOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(sub string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
		if sub != "" {
			c.Set("userID", sub)
		}
		return c, w
	}

	c, _ := newCtx("")
	if got, allowed := resolveOwner(c, "o1"); !allowed || got != "o1" {
		t.Fatalf("anonymous passthrough: %q %v", got, allowed)
	}
	c, _ = newCtx("u1")
	if got, allowed := resolveOwner(c, ""); !allowed || got != "u1" {
		t.Fatalf("default to subject: %q %v", got, allowed)
	}
	c, _ = newCtx("u1")
	if got, allowed := resolveOwner(c, "u1"); !allowed || got != "u1" {
		t.Fatalf("same owner: %q %v", got, allowed)
	}
	c, w := newCtx("u1")
	if _, allowed := resolveOwner(c, "u2"); allowed {
		t.Fatalf("mismatch should be rejected")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func Test_failService_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrRecipeNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrEntryNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrSavedNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrInvalidMeal, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrUnknownFormat, http.StatusBadRequest, ErrCodeBadRequest},
		{fmt.Errorf("wrap: %w", services.ErrInvalidImage), http.StatusBadRequest, ErrCodeInvalidImage},
		{services.ErrEmailTaken, http.StatusConflict, ErrCodeEmailTaken},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{errors.New("db down"), http.StatusInternalServerError, ErrCodeListFailed},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		failService(c, tc.err, ErrCodeListFailed)
		if w.Code != tc.status {
			t.Fatalf("%v: status %d want %d", tc.err, w.Code, tc.status)
		}
		var resp ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Code != tc.code {
			t.Fatalf("%v: code %q want %q", tc.err, resp.Code, tc.code)
		}
	}
}
