// Package services – AuthService
//
// AuthService registers accounts and exchanges credentials for session
// tokens. The client submits an opaque pass_hash; the server stores only a
// bcrypt digest of it and compares with bcrypt on login.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
	"github.com/tbourn/go-mealplan-backend/internal/repo"
)

// bcrypt ignores input past 72 bytes; longer credentials are rejected instead.
const maxCredentialBytes = 72

// TokenIssuer signs and verifies session tokens (see auth.Tokens).
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (string, error)
}

// AuthService implements register and login.
type AuthService struct {
	DB     *gorm.DB
	Tokens TokenIssuer

	// Cost is the bcrypt cost; values below bcrypt.MinCost use the default.
	Cost int
}

// NewAuthService returns an AuthService using bcrypt.DefaultCost.
func NewAuthService(db *gorm.DB, tokens TokenIssuer) *AuthService {
	return &AuthService{DB: db, Tokens: tokens, Cost: bcrypt.DefaultCost}
}

// Register creates a user. The email is trimmed and lower-cased before it is
// stored, so registrations differing only in case collide with ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, name, email, passHash string) (*domain.User, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || passHash == "" {
		return nil, ErrCredentialsRequired
	}
	if len(passHash) > maxCredentialBytes {
		return nil, ErrCredentialTooLong
	}

	cost := s.Cost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(passHash), cost)
	if err != nil {
		return nil, err
	}

	u, err := repo.CreateUser(ctx, s.DB, normalizeTitle(name), email, string(digest))
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return u, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// An unknown email and a wrong pass_hash are indistinguishable to callers.
func (s *AuthService) Login(ctx context.Context, email, passHash string) (*domain.User, string, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || passHash == "" {
		return nil, "", ErrCredentialsRequired
	}

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(passHash)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, "", err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return u, token, nil
}

// Authenticate resolves a session token to its user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	_, span := otel.Tracer("services/AuthService").Start(ctx, "Authenticate",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if s.Tokens == nil || token == "" {
		return "", ErrInvalidToken
	}
	return s.Tokens.Parse(token)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
