package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postboard/pkg/apperr"
	"postboard/pkg/models"
)

// Distinct token failures so callers can message them differently.
var (
	ErrTokenExpired = apperr.Unauthenticated("token expired")
	ErrTokenInvalid = apperr.Unauthenticated("invalid token")
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token embedding the user's id and email plus
// issued-at and expiry timestamps.
func (s *Service) IssueToken(user models.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// DecodeToken verifies signature and expiry and reconstructs the identity.
// It fails with ErrTokenExpired on expiry and ErrTokenInvalid on anything
// else; decoding is deterministic, the same token always yields the same
// claims.
func (s *Service) DecodeToken(token string) (Identity, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}

	ident := Identity{
		UserID: userID,
		Email:  claims.Email,
	}
	if claims.IssuedAt != nil {
		ident.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ident.ExpiresAt = claims.ExpiresAt.Time
	}

	return ident, nil
}
