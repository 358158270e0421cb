package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"bankingportal/internal/auth"
	"bankingportal/internal/bank"
	"bankingportal/internal/db"
	"bankingportal/internal/metrics"
	"bankingportal/internal/store"

	"github.com/google/uuid"
)

type TokenStore interface {
	Insert(ctx context.Context, id, token, accountID string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (store.Token, error)
	Delete(ctx context.Context, token string) (int64, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type TokenAccountStore interface {
	GetByNumber(ctx context.Context, accountNumber string) (store.Account, error)
}

// TokenService owns the session-token lifecycle: Issued -> Valid ->
// {Expired | Invalidated}. A token is live only while its signature and
// claims verify AND a persisted record exists; deleting the record revokes
// the token regardless of its expiry.
type TokenService struct {
	secret   string
	ttl      time.Duration
	tokens   TokenStore
	accounts TokenAccountStore
}

func NewTokenService(secret string, ttl time.Duration, tokens TokenStore, accounts TokenAccountStore) *TokenService {
	return &TokenService{
		secret:   secret,
		ttl:      ttl,
		tokens:   tokens,
		accounts: accounts,
	}
}

func (s *TokenService) Issue(ctx context.Context, accountNumber string) (string, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", bank.ErrAccountNotFound
		}
		return "", err
	}
	token, expiresAt, err := auth.GenerateToken(s.secret, accountNumber, s.ttl)
	if err != nil {
		return "", err
	}
	// A colliding token string is astronomically rare but must be a hard
	// failure, never a silent overwrite.
	if _, err := s.tokens.GetByToken(ctx, token); err == nil {
		return "", bank.ErrDuplicateToken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	if err := s.tokens.Insert(ctx, uuid.NewString(), token, account.ID, expiresAt); err != nil {
		if db.IsUniqueViolation(err) {
			return "", bank.ErrDuplicateToken
		}
		return "", err
	}
	return token, nil
}

// Validate returns the account number the token was issued for. Expired
// tokens are purged from storage on detection; a verifiable token with no
// persisted record is reported as NOT_FOUND (revoked).
func (s *TokenService) Validate(ctx context.Context, token string) (string, error) {
	accountNumber, err := auth.ParseToken(s.secret, token)
	if err != nil {
		reason, _ := bank.TokenReasonOf(err)
		metrics.CountTokenValidation(string(reason))
		if reason == bank.TokenExpired {
			if _, purgeErr := s.tokens.Delete(ctx, token); purgeErr != nil {
				log.Printf("token service: failed to purge expired token: %v", purgeErr)
			}
		}
		return "", err
	}
	if _, err := s.tokens.GetByToken(ctx, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.CountTokenValidation(string(bank.TokenNotFound))
			return "", &bank.TokenError{Reason: bank.TokenNotFound}
		}
		return "", err
	}
	metrics.CountTokenValidation("ok")
	return accountNumber, nil
}

// Invalidate revokes the token by deleting its record. Deleting an
// already-absent token is a no-op, not an error.
func (s *TokenService) Invalidate(ctx context.Context, token string) error {
	_, err := s.tokens.Delete(ctx, token)
	return err
}

func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, time.Now())
}
