package store

import "context"

const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
	TransactionTypeTransfer   = "TRANSFER"
)

// TransactionStore writes the append-only ledger. Completed entries are
// never updated or deleted.
type TransactionStore struct {
	db DB
}

type TransactionInput struct {
	ID              string
	Amount          int64
	Type            string
	SourceAccountID string
	TargetAccountID *string
}

type Transaction struct {
	ID              string  `db:"id"`
	Amount          int64   `db:"amount"`
	Type            string  `db:"type"`
	SourceAccountID string  `db:"source_account_id"`
	TargetAccountID *string `db:"target_account_id"`
	CreatedAt       any     `db:"created_at"`
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, amount, type, source_account_id, target_account_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Amount, input.Type, input.SourceAccountID, input.TargetAccountID,
	)
	return err
}

func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, amount, type, source_account_id, target_account_id, created_at
		FROM transactions
		WHERE source_account_id = $1 OR target_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SignedSumByAccount replays every entry touching the account with its sign:
// deposits and incoming transfers count positive, withdrawals and outgoing
// transfers negative. With a zero opening balance the sum must equal the
// stored balance.
func (s *TransactionStore) SignedSumByAccount(ctx context.Context, accountID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(
			CASE
				WHEN type = 'DEPOSIT' AND source_account_id = $1 THEN amount
				WHEN type = 'WITHDRAWAL' AND source_account_id = $1 THEN -amount
				WHEN type = 'TRANSFER' AND source_account_id = $1 THEN -amount
				WHEN type = 'TRANSFER' AND target_account_id = $1 THEN amount
				ELSE 0
			END
		), 0)
		FROM transactions
		WHERE source_account_id = $1 OR target_account_id = $1
	`, accountID)
	return sum, err
}
