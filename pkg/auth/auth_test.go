package auth

import (
	"context"
	"testing"
	"time"

	"postboard/pkg/apperr"
	"postboard/pkg/storage/memdb"
)

var testSigningKey = []byte("test-signing-key")

func testService(t *testing.T) *Service {
	t.Helper()

	s, err := New(memdb.New(), testSigningKey, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating auth service: %v", err)
	}

	return s
}

func TestNew_EmptyKey(t *testing.T) {
	_, err := New(memdb.New(), nil, time.Hour)
	if err == nil {
		t.Error("want error for empty signing key, got nil")
	}
}

func TestHashPassword_Verify(t *testing.T) {
	hash1, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	hash2, err := HashPassword("Secret123")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}

	// Salted: same plaintext, different hashes, both verify.
	if hash1 == hash2 {
		t.Error("want distinct hashes for repeated hashing, got equal")
	}
	if !VerifyPassword("Secret123", hash1) {
		t.Error("want password to verify against its own hash")
	}
	if !VerifyPassword("Secret123", hash2) {
		t.Error("want password to verify against its own hash")
	}
	if VerifyPassword("Secret124", hash1) {
		t.Error("want verification to fail for a different password")
	}
	if VerifyPassword("", hash1) {
		t.Error("want verification to fail for an empty password")
	}
}

func TestHashPassword_Invalid(t *testing.T) {
	if _, err := HashPassword(""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("want validation error for empty password, got %v", err)
	}

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("want validation error for oversized password, got %v", err)
	}
}

func TestToken_RoundTrip(t *testing.T) {
	s := testService(t)

	user, token, err := s.Signup(context.Background(), SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("want user id 1, got %d", user.ID)
	}
	if user.PasswordHash == "Secret123" {
		t.Error("password stored in plaintext")
	}

	ident, err := s.DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error decoding token: %v", err)
	}
	if ident.UserID != user.ID {
		t.Errorf("want token user id %d, got %d", user.ID, ident.UserID)
	}
	if ident.Email != "a@x.com" {
		t.Errorf("want token email a@x.com, got %s", ident.Email)
	}
	if !ident.ExpiresAt.After(ident.IssuedAt) {
		t.Errorf("want expiry after issue time, got issued %v expires %v", ident.IssuedAt, ident.ExpiresAt)
	}

	// Decoding is deterministic.
	again, err := s.DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error decoding token twice: %v", err)
	}
	if again != ident {
		t.Errorf("want identical claims on repeated decode\nfirst %+v\nsecond %+v", ident, again)
	}
}

func TestDecodeToken_Expired(t *testing.T) {
	s := testService(t)
	s.ttl = -time.Minute

	user, _, err := s.Signup(context.Background(), SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.DecodeToken(token); err != ErrTokenExpired {
			t.Errorf("want ErrTokenExpired, got %v", err)
		}
	}
}

func TestDecodeToken_Invalid(t *testing.T) {
	s := testService(t)

	user, token, err := s.Signup(context.Background(), SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}
	_ = user

	if _, err := s.DecodeToken("not.a.token"); err != ErrTokenInvalid {
		t.Errorf("want ErrTokenInvalid for garbage token, got %v", err)
	}

	// Token signed with a different key must not verify.
	other, err := New(memdb.New(), []byte("other-key"), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error creating auth service: %v", err)
	}
	if _, err := other.DecodeToken(token); err != ErrTokenInvalid {
		t.Errorf("want ErrTokenInvalid for wrong signature, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	s := testService(t)

	_, _, err := s.Signup(context.Background(), SignupInput{
		Email:           "not-an-email",
		Password:        "short",
		ConfirmPassword: "different",
	})
	e := apperr.From(err)
	if e == nil || e.Kind != apperr.KindValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	for _, field := range []string{"email", "password", "confirm_password"} {
		if _, ok := e.Fields[field]; !ok {
			t.Errorf("want per-field message for %q, got %v", field, e.Fields)
		}
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	s := testService(t)

	in := SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	}
	if _, _, err := s.Signup(context.Background(), in); err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}
	if _, _, err := s.Signup(context.Background(), in); !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("want conflict error for duplicate email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s := testService(t)

	user, _, err := s.Signup(context.Background(), SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}

	got, token, err := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("unexpected error logging in: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("want user id %d, got %d", user.ID, got.ID)
	}
	ident, err := s.DecodeToken(token)
	if err != nil {
		t.Fatalf("unexpected error decoding login token: %v", err)
	}
	if ident.UserID != user.ID {
		t.Errorf("want token user id %d, got %d", user.ID, ident.UserID)
	}

	if _, _, err := s.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong"}); !apperr.IsKind(err, apperr.KindAuth) {
		t.Errorf("want auth error for wrong password, got %v", err)
	}
	if _, _, err := s.Login(context.Background(), LoginInput{Email: "b@x.com", Password: "Secret123"}); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("want not found error for unknown email, got %v", err)
	}
	if _, _, err := s.Login(context.Background(), LoginInput{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("want validation error for empty input, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := testService(t)

	user, token, err := s.Signup(context.Background(), SignupInput{
		Email:           "a@x.com",
		FirstName:       "Ann",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
	})
	if err != nil {
		t.Fatalf("unexpected error signing up: %v", err)
	}

	ident, err := s.Authenticate(WithToken(context.Background(), token))
	if err != nil {
		t.Fatalf("unexpected error authenticating: %v", err)
	}
	if ident.UserID != user.ID {
		t.Errorf("want identity user id %d, got %d", user.ID, ident.UserID)
	}

	if _, err := s.Authenticate(context.Background()); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Errorf("want unauthenticated error for missing token, got %v", err)
	}
	if _, err := s.Authenticate(WithToken(context.Background(), "garbage")); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Errorf("want unauthenticated error for garbage token, got %v", err)
	}
}
