package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueParse_RoundTrip(t *testing.T) {
	tk := NewTokens("s3cret-key", time.Hour)
	tok, err := tk.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := tk.Parse(tok)
	if err != nil || sub != "u1" {
		t.Fatalf("Parse = %q, %v", sub, err)
	}
}

func TestParse_Expired(t *testing.T) {
	tk := NewTokens("s3cret-key", time.Minute)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tk.now = func() time.Time { return base }
	tok, err := tk.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tk.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := tk.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_WrongSecretOrGarbage(t *testing.T) {
	tok, _ := NewTokens("secret-one", time.Hour).Issue("u1")
	if _, err := NewTokens("secret-two", time.Hour).Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := NewTokens("secret-one", time.Hour).Parse("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	if _, err := NewTokens("s3cret-key", time.Hour).Issue("  "); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]struct {
		tok string
		ok  bool
	}{
		"Bearer abc":   {"abc", true},
		"bearer  xyz ": {"xyz", true},
		"Bearer ":      {"", false},
		"Basic abc":    {"", false},
		"":             {"", false},
	}
	for in, want := range cases {
		got, ok := BearerToken(in)
		if got != want.tok || ok != want.ok {
			t.Fatalf("BearerToken(%q) = %q,%v; want %q,%v", in, got, ok, want.tok, want.ok)
		}
	}
}
