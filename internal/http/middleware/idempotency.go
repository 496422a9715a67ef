package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey carries the client's retry key on recipe creation.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotencyReplayed is "true" on responses served from a stored
	// result.
	HeaderIdempotencyReplayed = "Idempotency-Replayed"
)

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// defaultKeyPattern admits RFC 7230 token-ish keys such as UUIDs or
// "client:42:create".
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key, if the request sent one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemKey).(string)
	return s, s != ""
}

// IdempotencyScope is the scope of the current route ("" when unscoped).
func IdempotencyScope(c *gin.Context) string {
	s, _ := c.Value(ctxKeyIdemScope).(string)
	return s
}

// IsReplay reports whether a completed request with the same requester,
// scope and key was found.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyIdemReplay).(bool)
	return b
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	MaxLen  int               // default 200
	Pattern *regexp.Regexp    // default defaultKeyPattern
	Scopes  map[string]string // "METHOD /full/route" -> scope, e.g. "recipe.create"
}

// IdempotencyLookup reports whether an unexpired record exists for
// (requester, scope, key) at now. Expiry is the lookup's job.
type IdempotencyLookup func(ctx context.Context, requester, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator checks Idempotency-Key and, on scoped routes, asks
// lookup whether the request was already completed. A hit marks the request
// as a replay, which the handler serves from the stored result and the rate
// limiter lets through. A malformed key is rejected with 400; a failing
// lookup is logged and the request proceeds as new, since the service still
// deduplicates inside its transaction.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "Idempotency-Key must be 1-" + strconv.Itoa(maxLen) + " token characters",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		scope, ok := opts.Scopes[c.Request.Method+" "+c.FullPath()]
		if !ok || scope == "" {
			c.Next()
			return
		}
		c.Set(ctxKeyIdemScope, scope)

		if lookup != nil {
			hit, err := lookup(c.Request.Context(), RequesterID(c), scope, key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			case hit:
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// RequesterID namespaces idempotency keys: the verified token subject, else
// "anon:<client IP>". Client-supplied identity headers are never trusted.
func RequesterID(c *gin.Context) string {
	if uid := userIDFromCtx(c); uid != "" {
		return uid
	}
	return "anon:" + c.ClientIP()
}
