package store

import (
	"context"
	"time"
)

type TokenStore struct {
	db DB
}

type Token struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	AccountID string    `db:"account_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt any       `db:"created_at"`
}

func NewTokenStore(db DB) *TokenStore {
	return &TokenStore{db: db}
}

// Insert fails on a duplicate token string; the tokens.token column carries
// a unique constraint so two live records can never share one string.
func (s *TokenStore) Insert(ctx context.Context, id, token, accountID string, expiresAt time.Time) error {
	query := `
		INSERT INTO tokens (id, token, account_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, id, token, accountID, expiresAt)
	return err
}

func (s *TokenStore) GetByToken(ctx context.Context, token string) (Token, error) {
	var row Token
	err := s.db.GetContext(ctx, &row, `
		SELECT id, token, account_id, expires_at, created_at
		FROM tokens
		WHERE token = $1
	`, token)
	if err != nil {
		return Token{}, err
	}
	return row, nil
}

// Delete removes the persisted record and reports how many rows matched.
// Deleting an absent token is not an error.
func (s *TokenStore) Delete(ctx context.Context, token string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = $1`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
