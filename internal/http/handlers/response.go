package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-mealplan-backend/internal/http/middleware"
)

// internalMessage is what clients see for any 5xx; the cause is only logged.
const internalMessage = "internal server error"

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching client reports to server logs.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code, see errors.go.
	Code string `json:"code" example:"not_found"`
	// Human-readable and safe to display.
	Message string `json:"message" example:"recipe not found"`
}

// fail aborts with the envelope. 5xx responses are logged on the request
// logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// failInternal logs err and answers 500 with a generic message so storage
// and driver errors never reach clients.
func failInternal(c *gin.Context, code string, err error) {
	middleware.LoggerFrom(c).Error().Err(err).Str("code", code).Msg("internal error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   internalMessage,
	})
}

// Fail lets the router answer NoRoute and NoMethod with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// checkETag sets W/"prefix:key:count:unixnano(maxTS)" and reports whether
// If-None-Match already names it, in which case 304 has been written.
// Nanoseconds matter: an in-place update keeps count and usually the second.
func checkETag(c *gin.Context, prefix, key string, count int64, maxTS *time.Time) bool {
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%s:%d:%d"`, prefix, key, count, ts)
	c.Header("ETag", etag)
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// etagMatches applies the weak comparison of RFC 9110 to a comma-separated
// If-None-Match list. "*" matches anything.
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, cand := range strings.Split(header, ",") {
		cand = strings.TrimSpace(cand)
		if cand == "*" || (cand != "" && strings.TrimPrefix(cand, "W/") == want) {
			return true
		}
	}
	return false
}
