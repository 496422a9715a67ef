package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveSecured(t *testing.T, opt SecurityOptions, pre gin.HandlerFunc, req *http.Request) http.Header {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := serveSecured(t, SecurityOptions{}, nil, httptest.NewRequest(http.MethodGet, "/api/recipe", nil))

	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline missing: %v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Content-Security-Policy", "Cache-Control",
		"Strict-Transport-Security", "Access-Control-Expose-Headers"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_Policy(t *testing.T) {
	h := serveSecured(t, SecurityOptions{EnablePolicy: true}, nil,
		httptest.NewRequest(http.MethodGet, "/api/recipe/r1/qr", nil))
	if h.Get("Content-Security-Policy") != apiCSP || h.Get("X-Permitted-Cross-Domain-Policies") != "none" ||
		h.Get("Permissions-Policy") == "" {
		t.Fatalf("policy headers: %v", h)
	}
}

func TestSecurityHeaders_CatalogVersusPrivate(t *testing.T) {
	opt := SecurityOptions{
		NoStore:        true,
		PublicPrefixes: []string{"/api/items/", "/api/videos"},
		PublicMaxAge:   90 * time.Second,
	}
	for _, tc := range []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/items", "public, max-age=90"},
		{http.MethodHead, "/api/videos", "public, max-age=90"},
		{http.MethodGet, "/api/videos/v1", "public, max-age=90"},
		{http.MethodPost, "/api/items", "no-store"},
		{http.MethodGet, "/api/itemsx", "no-store"},
		{http.MethodGet, "/api/calendar/week", "no-store"},
	} {
		h := serveSecured(t, opt, nil, httptest.NewRequest(tc.method, tc.path, nil))
		if got := h.Get("Cache-Control"); got != tc.want {
			t.Fatalf("%s %s: Cache-Control %q, want %q", tc.method, tc.path, got, tc.want)
		}
		if tc.want == "no-store" && (h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0") {
			t.Fatalf("%s %s: legacy no-cache headers missing", tc.method, tc.path)
		}
	}

	h := serveSecured(t, SecurityOptions{PublicPrefixes: []string{"/api/items"}}, nil,
		httptest.NewRequest(http.MethodGet, "/api/items", nil))
	if got := h.Get("Cache-Control"); got != "public, max-age=300" {
		t.Fatalf("default public max-age: %q", got)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	opt := SecurityOptions{EnableHSTS: true, HSTSMaxAge: 365 * 24 * time.Hour}
	want := "max-age=31536000; includeSubDomains; preload"

	plain := httptest.NewRequest(http.MethodGet, "/health", nil)
	if got := serveSecured(t, opt, nil, plain).Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("HSTS over http: %q", got)
	}

	proxied := httptest.NewRequest(http.MethodGet, "/health", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	if got := serveSecured(t, opt, nil, proxied).Get("Strict-Transport-Security"); got != want {
		t.Fatalf("proxied HSTS = %q", got)
	}

	direct := httptest.NewRequest(http.MethodGet, "/health", nil)
	direct.TLS = &tls.ConnectionState{}
	if got := serveSecured(t, SecurityOptions{EnableHSTS: true}, nil, direct).Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default HSTS = %q", got)
	}
}

func TestSecurityHeaders_ExposesRequestID(t *testing.T) {
	for _, tc := range []struct{ existing, want string }{
		{"", "X-Request-ID"},
		{"ETag", "ETag, X-Request-ID"},
		{"ETag, x-request-id", "ETag, x-request-id"},
	} {
		pre := func(c *gin.Context) {
			c.Header(requestIDHeader, "rid-1")
			if tc.existing != "" {
				c.Header("Access-Control-Expose-Headers", tc.existing)
			}
			c.Next()
		}
		h := serveSecured(t, SecurityOptions{}, pre, httptest.NewRequest(http.MethodGet, "/", nil))
		if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
			t.Fatalf("existing %q: got %q, want %q", tc.existing, got, tc.want)
		}
	}
}
