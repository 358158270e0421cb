// Package auth holds the JWT and password-hashing primitives. Tokens are
// HS512-signed with subject = account number; the secret and TTL come from
// process configuration.
package auth

import (
	"errors"
	"time"

	"bankingportal/internal/bank"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(passwordHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
}

// GenerateToken signs {sub, iat, exp} and returns the token string with its
// expiry instant.
func GenerateToken(secret, accountNumber string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   accountNumber,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseToken verifies signature and claims and returns the account number.
// Failures come back as *bank.TokenError with the rejection reason.
func ParseToken(secret, token string) (string, error) {
	if token == "" {
		return "", &bank.TokenError{Reason: bank.TokenEmpty}
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &bank.TokenError{Reason: bank.TokenUnsupportedFormat}
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", tokenErrorFor(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", &bank.TokenError{Reason: bank.TokenMalformed}
	}
	return claims.Subject, nil
}

func tokenErrorFor(err error) error {
	var tokenErr *bank.TokenError
	switch {
	case errors.As(err, &tokenErr):
		return tokenErr
	case errors.Is(err, jwt.ErrTokenExpired):
		return &bank.TokenError{Reason: bank.TokenExpired}
	case errors.Is(err, jwt.ErrTokenMalformed):
		return &bank.TokenError{Reason: bank.TokenMalformed}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &bank.TokenError{Reason: bank.TokenBadSignature}
	default:
		return &bank.TokenError{Reason: bank.TokenUnsupportedFormat}
	}
}
