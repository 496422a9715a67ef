package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// keyFunc maps a request to the identity its bucket is keyed by.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys buckets by the verified token subject, else the client
// IP. Identity headers are ignored since clients can rotate them freely.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := userIDFromCtx(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// RateRule is a token-bucket budget: RPS tokens per second, at most Burst
// stored.
type RateRule struct {
	RPS   float64
	Burst int
}

func (r RateRule) normalized() RateRule {
	if r.Burst <= 0 {
		r.Burst = 1
	}
	return r
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local, per-identity token-bucket limiter. Routes
// registered with Route get their own budget and bucket namespace; all other
// requests share the default rule. Replays flagged by IdempotencyValidator
// are never limited. Safe for concurrent use.
type RateLimiter struct {
	def    RateRule
	routes map[string]RateRule
	keyFn  keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	idleTTL time.Duration
	sweepN  int
	lookups int

	now func() time.Time
}

// NewRateLimiter returns a limiter whose default rule is (rps, burst).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if keyFn == nil {
		keyFn = KeyByUserOrIP()
	}
	return &RateLimiter{
		def:     RateRule{RPS: rps, Burst: burst}.normalized(),
		routes:  map[string]RateRule{},
		keyFn:   keyFn,
		buckets: map[string]*bucket{},
		idleTTL: 10 * time.Minute,
		sweepN:  5000,
		now:     time.Now,
	}
}

// Route gives "METHOD fullPath" its own rule, e.g. a tight budget on login
// to slow password guessing. It returns rl for chaining and must be called
// before Handler serves traffic.
func (rl *RateLimiter) Route(method, fullPath string, rule RateRule) *RateLimiter {
	rl.routes[method+" "+fullPath] = rule.normalized()
	return rl
}

// limiter returns the bucket for (class, id), creating it from rule. Idle
// buckets are swept every sweepN lookups, before the requested one is
// touched, so a stale bucket is replaced rather than refreshed.
func (rl *RateLimiter) limiter(class, id string, rule RateRule) *rate.Limiter {
	now := rl.now()
	key := class + "|" + id

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.sweepN {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.RPS), rule.Burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A rejected request gets 429 with the usual
// error envelope and a Retry-After hint in whole seconds.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		class, rule := "*", rl.def
		if r, ok := rl.routes[c.Request.Method+" "+c.FullPath()]; ok {
			class, rule = c.Request.Method+" "+c.FullPath(), r
		}
		lim := rl.limiter(class, rl.keyFn(c), rule)

		if lim.Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", retryAfter(rule))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"message":    "rate limit exceeded",
		})
	}
}

// retryAfter is the time to earn one token, rounded up, at least 1s.
func retryAfter(rule RateRule) string {
	if rule.RPS <= 0 {
		return "60"
	}
	secs := int(math.Ceil(1 / rule.RPS))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
