package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// apiCSP locks down anything a browser might render from the API: JSON,
// recipe images, QR codes and plan downloads never need scripts or frames.
const apiCSP = "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'"

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests only.
	// Enable it only when TLS reaches the process or its proxy.
	EnableHSTS bool
	HSTSMaxAge time.Duration // default 180 days

	// NoStore marks every response not covered by PublicPrefixes as
	// uncacheable. Recipes, saves and calendars are per-user data.
	NoStore bool

	// EnablePolicy adds Permissions-Policy and a restrictive CSP.
	EnablePolicy bool

	// PublicPrefixes are path roots (matched on segment boundaries) whose
	// GET/HEAD responses are shared-cacheable for PublicMaxAge (default 5m).
	// Used for the item and video catalog.
	PublicPrefixes []string
	PublicMaxAge   time.Duration
}

// SecurityHeaders sets nosniff, frame and referrer hardening on every
// response, picks Cache-Control per the catalog/private split, adds HSTS
// over HTTPS and makes X-Request-ID readable by browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	hsts := opt.HSTSMaxAge
	if hsts <= 0 {
		hsts = 180 * 24 * time.Hour
	}
	public := opt.PublicMaxAge
	if public <= 0 {
		public = 5 * time.Minute
	}
	hstsValue := "max-age=" + seconds(hsts) + "; includeSubDomains; preload"
	publicValue := "public, max-age=" + seconds(public)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("Content-Security-Policy", apiCSP)
		}

		switch {
		case isPublic(c.Request, opt.PublicPrefixes):
			h.Set("Cache-Control", publicValue)
		case opt.NoStore:
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if h.Get(requestIDHeader) != "" {
			exposeHeader(h, requestIDHeader)
		}

		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	if cur == "" {
		h.Set(key, name)
		return
	}
	for _, p := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return
		}
	}
	h.Set(key, cur+", "+name)
}

// isPublic reports whether r is a GET/HEAD at or below one of prefixes.
// "/api/items" matches "/api/items" and "/api/items/x", not "/api/itemsx".
func isPublic(r *http.Request, prefixes []string) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	path := r.URL.Path
	for _, p := range prefixes {
		p = strings.TrimSuffix(p, "/")
		if p == "" || !strings.HasPrefix(path, p) {
			continue
		}
		if len(path) == len(p) || path[len(p)] == '/' {
			return true
		}
	}
	return false
}

// isHTTPS trusts X-Forwarded-Proto; the API is deployed behind a proxy.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
