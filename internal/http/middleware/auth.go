package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-mealplan-backend/internal/auth"
)

// ctxKeyUserID holds the subject of a verified bearer token.
const ctxKeyUserID = "userID"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier func(ctx context.Context, token string) (userID string, err error)

// Authenticate reads "Authorization: Bearer <token>" and, when the token
// verifies, stores its subject under the "userID" context key. Requests with
// a missing or bad token continue anonymously; RequireAuth decides whether
// that is acceptable.
func Authenticate(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verify == nil {
			c.Next()
			return
		}
		tok, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		if uid, err := verify(c.Request.Context(), tok); err == nil && uid != "" {
			c.Set(ctxKeyUserID, uid)
		} else {
			c.Set(ctxKeyAuthFailed, true)
		}
		c.Next()
	}
}

const ctxKeyAuthFailed = "auth.failed"

// AuthSubject returns the verified user id, if any.
func AuthSubject(c *gin.Context) (string, bool) {
	uid := userIDFromCtx(c)
	return uid, uid != ""
}

// RequireAuth rejects requests without a verified token with 401 when
// required is true. It is a no-op otherwise, except that a token that was
// sent but failed verification is always rejected.
func RequireAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AuthSubject(c); ok {
			c.Next()
			return
		}
		failed := c.GetBool(ctxKeyAuthFailed)
		if required || failed {
			msg := "authentication required"
			if failed {
				msg = "invalid or expired token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    msg,
			})
			return
		}
		c.Next()
	}
}

func userIDFromCtx(c *gin.Context) string {
	s, _ := c.Value(ctxKeyUserID).(string)
	return s
}
