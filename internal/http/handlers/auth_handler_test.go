package handlers

import (
	"net/http"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/register", RegisterRequest{Name: "Ada", Email: "Ada@Example.com", PassHash: "h1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	reg := decode[RegisterResponse](t, w)
	if reg.ID == "" {
		t.Fatalf("register returned no id")
	}

	// Same email, different case: 409.
	w = e.do(t, http.MethodPost, "/api/register", RegisterRequest{Name: "Other", Email: "ada@example.com", PassHash: "h2"})
	if w.Code != http.StatusConflict || decode[ErrorResponse](t, w).Code != ErrCodeEmailTaken {
		t.Fatalf("duplicate register: %d %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/api/login", LoginRequest{Email: "ada@example.com", PassHash: "h1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	login := decode[LoginResponse](t, w)
	if login.ID != reg.ID || login.Token == "" {
		t.Fatalf("login response: %+v", login)
	}
	if sub, err := e.tokens.Parse(login.Token); err != nil || sub != reg.ID {
		t.Fatalf("token subject: %q %v", sub, err)
	}

	w = e.do(t, http.MethodPost, "/api/login", LoginRequest{Email: "ada@example.com", PassHash: "wrong"})
	if w.Code != http.StatusUnauthorized || decode[ErrorResponse](t, w).Code != ErrCodeInvalidCredentials {
		t.Fatalf("bad login: %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodPost, "/api/login", LoginRequest{Email: "nobody@example.com", PassHash: "h1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: %d", w.Code)
	}
}

func TestRegister_BadInput(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/register", RegisterRequest{Name: "NoEmail", PassHash: "h"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing email: %d", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/register", RegisterRequest{Email: "x@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing pass_hash: %d", w.Code)
	}
	w = e.do(t, http.MethodPost, "/api/register", "not an object")
	if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Code != ErrCodeBadRequest {
		t.Fatalf("bad json: %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodPost, "/api/login", 42)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("login bad json: %d", w.Code)
	}
}
