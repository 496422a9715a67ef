package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/services"
)

func seedCatalog(t *testing.T, e *testEnv) {
	t.Helper()
	svc := &services.CatalogService{DB: e.db}
	err := svc.Seed(context.Background(), &services.CatalogSeed{
		Items: []domain.CatalogItem{
			{ID: "i1", Name: "Wok", PriceCents: 3999, Currency: "USD", Category: "cookware"},
			{ID: "i2", Name: "Chef Knife", PriceCents: 5900, Currency: "USD", Category: "cookware"},
			{ID: "i3", Name: "Paprika", PriceCents: 450, Currency: "USD", Category: "spices"},
		},
		Videos: []domain.Video{
			{ID: "v1", Title: "Knife skills", URL: "https://videos.example/v1", Category: "basics"},
			{ID: "v2", Title: "Braising", URL: "https://videos.example/v2", Category: "techniques"},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestCatalog_Items(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e)

	w := e.do(t, http.MethodGet, "/api/items", nil)
	all := decode[[]domain.CatalogItem](t, w)
	if w.Code != http.StatusOK || len(all) != 3 || all[0].Name != "Chef Knife" {
		t.Fatalf("all items: %d %+v", w.Code, all)
	}
	if !strings.Contains(w.Body.String(), `"price":"$59.00"`) {
		t.Fatalf("display price missing: %s", w.Body.String())
	}

	for _, tc := range []struct {
		name, method, path string
		body               any
	}{
		{"get query", http.MethodGet, "/api/items?category=cookware", nil},
		{"post query", http.MethodPost, "/api/items?category=cookware", nil},
		{"post body", http.MethodPost, "/api/items", CatalogQuery{Category: " cookware "}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(t, tc.method, tc.path, tc.body)
			got := decode[[]domain.CatalogItem](t, w)
			if w.Code != http.StatusOK || len(got) != 2 {
				t.Fatalf("%d %+v", w.Code, got)
			}
			for _, it := range got {
				if it.Category != "cookware" {
					t.Fatalf("wrong category: %+v", it)
				}
			}
		})
	}

	w = e.do(t, http.MethodGet, "/api/items?category=none", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty category should be []: %d %s", w.Code, w.Body.String())
	}
}

func TestCatalog_Videos(t *testing.T) {
	e := newEnv(t)
	seedCatalog(t, e)

	w := e.do(t, http.MethodPost, "/api/videos", nil)
	all := decode[[]domain.Video](t, w)
	if w.Code != http.StatusOK || len(all) != 2 || all[0].Title != "Braising" {
		t.Fatalf("all videos: %d %+v", w.Code, all)
	}
	w = e.do(t, http.MethodPost, "/api/videos", CatalogQuery{Category: "basics"})
	if got := decode[[]domain.Video](t, w); len(got) != 1 || got[0].ID != "v1" {
		t.Fatalf("basics: %+v", got)
	}
}

func TestCatalog_BadBody(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Code != ErrCodeBadRequest {
		t.Fatalf("bad json: %d %s", w.Code, w.Body.String())
	}
}
