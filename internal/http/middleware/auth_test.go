package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func fakeVerifier(_ context.Context, tok string) (string, error) {
	if tok == "good" {
		return "u1", nil
	}
	return "", errors.New("bad token")
}

func TestAuthenticate_SetsSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(fakeVerifier))
	r.GET("/me", func(c *gin.Context) {
		uid, ok := AuthSubject(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "ok": ok, "failed": c.GetBool(ctxKeyAuthFailed)})
	})

	cases := []struct {
		name, header string
		wantUID      string
		wantFailed   bool
	}{
		{"no header", "", "", false},
		{"good token", "Bearer good", "u1", false},
		{"lowercase scheme", "bearer good", "u1", false},
		{"bad token", "Bearer nope", "", true},
		{"other scheme", "Basic abc", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			var body struct {
				UID    string `json:"uid"`
				OK     bool   `json:"ok"`
				Failed bool   `json:"failed"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.UID != tc.wantUID || body.OK != (tc.wantUID != "") || body.Failed != tc.wantFailed {
				t.Fatalf("got %+v", body)
			}
		})
	}
}

func TestAuthenticate_NilVerifierIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(nil))
	r.GET("/x", func(c *gin.Context) {
		if _, ok := AuthSubject(c); ok {
			t.Fatalf("no subject expected")
		}
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(required bool) *gin.Engine {
		r := gin.New()
		r.Use(RequestID(), Authenticate(fakeVerifier))
		r.POST("/recipe", RequireAuth(required), func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	cases := []struct {
		name     string
		required bool
		header   string
		want     int
	}{
		{"optional anonymous passes", false, "", http.StatusCreated},
		{"optional bad token rejected", false, "Bearer nope", http.StatusUnauthorized},
		{"required anonymous rejected", true, "", http.StatusUnauthorized},
		{"required good token passes", true, "Bearer good", http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/recipe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			newRouter(tc.required).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
			if w.Code == http.StatusUnauthorized {
				var body map[string]any
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if body["code"] != "unauthorized" || body["request_id"] == "" || body["request_id"] == nil {
					t.Fatalf("unexpected 401 body: %v", body)
				}
			}
		})
	}
}
