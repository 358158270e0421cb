package store

import "context"

const (
	AccountTypeSavings = "SAVINGS"

	AccountStatusActive = "ACTIVE"
	AccountStatusClosed = "CLOSED"
)

type AccountStore struct {
	db DB
}

type Account struct {
	ID            string  `db:"id"`
	AccountNumber string  `db:"account_number"`
	UserID        string  `db:"user_id"`
	Balance       int64   `db:"balance"`
	AccountType   string  `db:"account_type"`
	AccountStatus string  `db:"account_status"`
	PINHash       *string `db:"pin_hash"`
	CreatedAt     any     `db:"created_at"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, accountNumber, userID string) error {
	query := `
		INSERT INTO accounts (id, account_number, user_id, balance, account_type, account_status)
		VALUES ($1, $2, $3, 0, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, id, accountNumber, userID, AccountTypeSavings, AccountStatusActive)
	return err
}

func (s *AccountStore) GetByNumber(ctx context.Context, accountNumber string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, account_number, user_id, balance, account_type, account_status, pin_hash, created_at
		FROM accounts
		WHERE account_number = $1
	`, accountNumber)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetByUser(ctx context.Context, userID string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, account_number, user_id, balance, account_type, account_status, pin_hash, created_at
		FROM accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

// GetForUpdate locks the account row for the remainder of the transaction.
// Balance mutations on the same account serialize behind this lock.
func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountNumber string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, account_number, user_id, balance, account_type, account_status, pin_hash
		FROM accounts
		WHERE account_number = $1
		FOR UPDATE
	`, accountNumber)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) SetPINHash(ctx context.Context, tx Execer, accountID, pinHash string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET pin_hash = $1, updated_at = NOW()
		WHERE id = $2
	`, pinHash, accountID)
	return err
}

func (s *AccountStore) SetStatus(ctx context.Context, tx Execer, accountID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET account_status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, accountID)
	return err
}
