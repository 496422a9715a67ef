package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func envelope(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return resp
}

func Test_failHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-1")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/missing", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found") })
	r.GET("/unavailable", func(c *gin.Context) {
		fail(c, http.StatusServiceUnavailable, ErrCodeInternal, "search index warming up")
	})
	r.GET("/db", func(c *gin.Context) {
		failInternal(c, ErrCodeListFailed, errors.New("sqlite: database is locked"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if got := envelope(t, w); w.Code != http.StatusNotFound ||
		got != (ErrorResponse{RequestID: "rid-1", Code: ErrCodeNotFound, Message: "recipe not found"}) {
		t.Fatalf("404: %d %+v", w.Code, got)
	}
	if buf.Len() != 0 {
		t.Fatalf("4xx should not log: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unavailable", nil))
	if got := envelope(t, w); w.Code != http.StatusServiceUnavailable || got.Message != "search index warming up" {
		t.Fatalf("503: %d %+v", w.Code, got)
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("5xx not logged: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/db", nil))
	got := envelope(t, w)
	if w.Code != http.StatusInternalServerError || got.Code != ErrCodeListFailed || got.Message != internalMessage {
		t.Fatalf("500: %d %+v", w.Code, got)
	}
	if !strings.Contains(buf.String(), "database is locked") {
		t.Fatalf("cause not logged: %s", buf.String())
	}
	if strings.Contains(w.Body.String(), "sqlite") {
		t.Fatalf("cause leaked to client: %s", w.Body.String())
	}
}

func Test_successHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/saved", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"recipe_id": "r1"}) })
	r.DELETE("/calendar/:id", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/saved", nil))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"recipe_id":"r1"`) {
		t.Fatalf("ok: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/calendar/c1", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body.String())
	}
}

func Test_checkETag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	run := func(inm string, maxTS *time.Time) (bool, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if inm != "" {
			c.Request.Header.Set("If-None-Match", inm)
		}
		hit := checkETag(c, "recipes", "o1", 3, maxTS)
		c.Writer.WriteHeaderNow()
		return hit, w
	}

	hit, w := run("", &ts)
	want := fmt.Sprintf(`W/"recipes:o1:3:%d"`, ts.UnixNano())
	if hit || w.Header().Get("ETag") != want {
		t.Fatalf("first: hit=%v etag=%q", hit, w.Header().Get("ETag"))
	}
	if hit, w = run(want, &ts); !hit || w.Code != http.StatusNotModified {
		t.Fatalf("match: hit=%v code=%d", hit, w.Code)
	}
	if hit, _ = run(`W/"recipes:o1:2:0"`, &ts); hit {
		t.Fatalf("stale tag should not match")
	}
	if _, w = run("", nil); w.Header().Get("ETag") != `W/"recipes:o1:3:0"` {
		t.Fatalf("nil timestamp: %q", w.Header().Get("ETag"))
	}
}

func Test_etagMatches(t *testing.T) {
	const tag = `W/"recipes:o1:3:9"`
	for _, tc := range []struct {
		header string
		want   bool
	}{
		{"", false},
		{tag, true},
		{`"recipes:o1:3:9"`, true},
		{`"other", ` + tag, true},
		{`"other",W/"recipes:o1:2:9"`, false},
		{"*", true},
		{" , ", false},
	} {
		if got := etagMatches(tc.header, tag); got != tc.want {
			t.Fatalf("etagMatches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}
