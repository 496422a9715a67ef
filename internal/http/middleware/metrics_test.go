package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/recipe/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.DELETE("/calendar/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	okC := httpReqs.WithLabelValues("GET", "/recipe/:id", "200")
	missC := httpReqs.WithLabelValues("GET", unmatchedRoute, "404")
	delC := httpReqs.WithLabelValues("DELETE", "/calendar/:id", "204")
	baseOK, baseMiss, baseDel := testutil.ToFloat64(okC), testutil.ToFloat64(missC), testutil.ToFloat64(delC)

	for _, rq := range []struct{ method, path string }{
		{http.MethodGet, "/recipe/r1"},
		{http.MethodGet, "/recipe/r2"},
		{http.MethodGet, "/wp-login.php"},
		{http.MethodGet, "/.env"},
		{http.MethodDelete, "/calendar/c1"},
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(rq.method, rq.path, nil))
	}

	if got := testutil.ToFloat64(okC) - baseOK; got != 2 {
		t.Fatalf("route pattern count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(missC) - baseMiss; got != 2 {
		t.Fatalf("unmatched count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(delC) - baseDel; got != 1 {
		t.Fatalf("delete count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v", got)
	}
}

func TestMetrics_DomainCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyIdemScope, "recipe.create")
			c.Set(ctxKeyIdemReplay, true)
		}
		if c.GetHeader("X-Bad-Token") != "" {
			c.Set(ctxKeyAuthFailed, true)
		}
		c.Next()
	})
	r.POST("/recipe", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/login", func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) })
	r.GET("/calendar/week/export", func(c *gin.Context) {
		if c.Query("format") == "docx" {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.3"))
	})

	replays := idemReplays.WithLabelValues("recipe.create")
	limited := rateLimited.WithLabelValues("/login")
	pdf, xlsx := planExports.WithLabelValues("pdf"), planExports.WithLabelValues("xlsx")
	other := planExports.WithLabelValues("other")
	b := []float64{
		testutil.ToFloat64(replays), testutil.ToFloat64(limited), testutil.ToFloat64(authFailures),
		testutil.ToFloat64(pdf), testutil.ToFloat64(xlsx), testutil.ToFloat64(other),
	}

	send := func(method, path string, hdr ...string) {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		for _, h := range hdr {
			req.Header.Set(h, "1")
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	send(http.MethodPost, "/recipe", "X-Replay")
	send(http.MethodPost, "/recipe")
	send(http.MethodPost, "/login", "X-Bad-Token")
	send(http.MethodGet, "/calendar/week/export")
	send(http.MethodGet, "/calendar/week/export?format=PDF")
	send(http.MethodGet, "/calendar/week/export?format=xlsx")
	send(http.MethodGet, "/calendar/week/export?format=docx") // 400, not counted

	for i, tc := range []struct {
		name string
		got  float64
		want float64
	}{
		{"replays", testutil.ToFloat64(replays), 1},
		{"rate limited", testutil.ToFloat64(limited), 1},
		{"auth failures", testutil.ToFloat64(authFailures), 1},
		{"pdf exports", testutil.ToFloat64(pdf), 2},
		{"xlsx exports", testutil.ToFloat64(xlsx), 1},
		{"other exports", testutil.ToFloat64(other), 0},
	} {
		if d := tc.got - b[i]; d != tc.want {
			t.Fatalf("%s delta = %v, want %v", tc.name, d, tc.want)
		}
	}
}

func Test_exportFormat(t *testing.T) {
	for in, want := range map[string]string{"": "pdf", " PDF ": "pdf", "xlsx": "xlsx", "csv": "other"} {
		if got := exportFormat(in); got != want {
			t.Fatalf("exportFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
