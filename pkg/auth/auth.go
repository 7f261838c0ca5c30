// Package auth owns credentials and session identity: password hashing and
// verification, signed session tokens, the signup/login protocols and the
// request authentication gate.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"postboard/pkg/apperr"
	"postboard/pkg/models"
	"postboard/pkg/storage"
)

// DefaultTokenTTL is the canonical session lifetime.
const DefaultTokenTTL = time.Hour

// bcrypt truncates anything past 72 bytes, so longer inputs are rejected
// instead of silently weakened.
const maxPasswordLen = 72

const minPasswordLen = 8

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Identity is the authenticated caller's claim set, reconstructed from a
// verified token on every request and never persisted.
type Identity struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Service struct {
	db         storage.Storage
	signingKey []byte
	ttl        time.Duration
}

// New returns a Service signing tokens with key. An empty key is a
// configuration error; ttl <= 0 falls back to DefaultTokenTTL.
func New(db storage.Storage, signingKey []byte, ttl time.Duration) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("auth: signing key is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{db: db, signingKey: signingKey, ttl: ttl}, nil
}

// HashPassword applies a salted, computationally expensive one-way transform.
// Two calls on the same plaintext produce different hashes that both verify.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperr.Validation("password must not be empty")
	}
	if len(plaintext) > maxPasswordLen {
		return "", apperr.Validation("password too long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. A mismatch is a
// false return, never an error.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

type SignupInput struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Signup registers a new user and returns it with a fresh token, so the
// caller is authenticated immediately.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, string, error) {
	fields := map[string]string{}
	if !emailRx.MatchString(in.Email) {
		fields["email"] = "invalid email address"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLen)
	}
	if len(in.Password) > maxPasswordLen {
		fields["password"] = "password too long"
	}
	if in.Password != in.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return models.User{}, "", apperr.ValidationFields("invalid signup input", fields)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", err
	}

	user, err := s.db.CreateUser(ctx, models.User{
		Email:        strings.ToLower(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrEmailTaken) {
		return models.User{}, "", apperr.Conflict("email taken")
	}
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	fields := map[string]string{}
	if in.Email == "" {
		fields["email"] = "email is required"
	}
	if in.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return models.User{}, "", apperr.ValidationFields("invalid login input", fields)
	}

	user, err := s.db.UserByEmail(ctx, strings.ToLower(in.Email))
	if errors.Is(err, storage.ErrUserNotFound) {
		return models.User{}, "", apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, "", err
	}

	if !VerifyPassword(in.Password, user.PasswordHash) {
		return models.User{}, "", apperr.Auth("wrong credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return models.User{}, "", err
	}

	return user, token, nil
}

// Authenticate is the gate called at the top of every protected operation.
// It reads the bearer token the transport placed in ctx and returns the
// verified identity. It is stateless and performs no I/O beyond signature
// verification, so it can never leave partial work behind.
func (s *Service) Authenticate(ctx context.Context) (Identity, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return Identity{}, apperr.Unauthenticated("missing bearer token")
	}

	return s.DecodeToken(token)
}

type ctxKeyToken struct{}

// WithToken stores the raw bearer token in ctx for a later Authenticate call.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyToken{}, token)
}

func TokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyToken{}).(string); ok {
		return v
	}
	return ""
}
