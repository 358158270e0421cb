package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"

	"bankingportal/internal/bank"
	"bankingportal/internal/db"
	"bankingportal/internal/pin"
	"bankingportal/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FullAccountStore interface {
	AccountStore
	Create(ctx context.Context, tx store.Execer, id, accountNumber, userID string) error
	GetByUser(ctx context.Context, userID string) (store.Account, error)
	SetPINHash(ctx context.Context, tx store.Execer, accountID, pinHash string) error
	SetStatus(ctx context.Context, tx store.Execer, accountID, status string) error
}

type LedgerSums interface {
	SignedSumByAccount(ctx context.Context, accountID string) (int64, error)
}

type ReconciliationReport struct {
	AccountNumber string
	StoredBalance int64
	LedgerSum     int64
	Difference    int64
}

// AccountService covers the account lifecycle around the ledger engine:
// provisioning at registration, PIN management, closing, reconciliation.
type AccountService struct {
	txRunner db.TxRunner
	accounts FullAccountStore
	sums     LedgerSums
	guard    *pin.Guard
}

func NewAccountService(txRunner db.TxRunner, accounts FullAccountStore, sums LedgerSums, guard *pin.Guard) *AccountService {
	return &AccountService{
		txRunner: txRunner,
		accounts: accounts,
		sums:     sums,
		guard:    guard,
	}
}

// Open provisions the user's single account inside the caller's transaction:
// a fresh 6-digit account number, zero balance, no PIN yet. Accounts are
// created exactly once, at registration; login never provisions.
func (s *AccountService) Open(ctx context.Context, tx store.Execer, userID string) (store.Account, error) {
	number, err := s.freeAccountNumber(ctx)
	if err != nil {
		return store.Account{}, err
	}
	id := uuid.NewString()
	if err := s.accounts.Create(ctx, tx, id, number, userID); err != nil {
		if db.IsUniqueViolation(err) {
			return store.Account{}, bank.ErrTxConflict
		}
		return store.Account{}, err
	}
	return store.Account{
		ID:            id,
		AccountNumber: number,
		UserID:        userID,
		Balance:       0,
		AccountType:   store.AccountTypeSavings,
		AccountStatus: store.AccountStatusActive,
	}, nil
}

func (s *AccountService) freeAccountNumber(ctx context.Context) (string, error) {
	const attempts = 10
	for i := 0; i < attempts; i++ {
		candidate := fmt.Sprintf("%06d", rand.Intn(1000000))
		_, err := s.accounts.GetByNumber(ctx, candidate)
		if errors.Is(err, sql.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", bank.ErrTxConflict
}

func (s *AccountService) Get(ctx context.Context, accountNumber string) (AccountSnapshot, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AccountSnapshot{}, bank.ErrAccountNotFound
		}
		return AccountSnapshot{}, err
	}
	return AccountSnapshot{
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance,
		AccountType:   account.AccountType,
	}, nil
}

func (s *AccountService) GetByUser(ctx context.Context, userID string) (store.Account, error) {
	account, err := s.accounts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, bank.ErrAccountNotFound
		}
		return store.Account{}, err
	}
	return account, nil
}

// CreatePIN stores the first PIN hash. A second create always fails with
// ErrPINAlreadySet, whatever the ordering of concurrent attempts: the row
// lock serializes them and the loser sees the winner's hash.
func (s *AccountService) CreatePIN(ctx context.Context, accountNumber, pinCode string) error {
	if err := s.guard.ValidateFormat(pinCode); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.lockAccount(ctx, tx, accountNumber)
		if err != nil {
			return err
		}
		if account.PINHash != nil && *account.PINHash != "" {
			return bank.ErrPINAlreadySet
		}
		hash, err := s.guard.Hash(pinCode)
		if err != nil {
			return err
		}
		return s.accounts.SetPINHash(ctx, tx, account.ID, hash)
	})
}

// UpdatePIN authorizes against the old PIN before judging the new one's
// format, so a caller with a wrong old PIN learns nothing about format rules.
func (s *AccountService) UpdatePIN(ctx context.Context, accountNumber, oldPin, newPin string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.lockAccount(ctx, tx, accountNumber)
		if err != nil {
			return err
		}
		if err := s.guard.Verify(account.PINHash, oldPin); err != nil {
			return err
		}
		hash, err := s.guard.Hash(newPin)
		if err != nil {
			return err
		}
		return s.accounts.SetPINHash(ctx, tx, account.ID, hash)
	})
}

// Close transitions the account to CLOSED. The row is kept because ledger
// entries reference it; closing requires a zero balance.
func (s *AccountService) Close(ctx context.Context, accountNumber string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.lockAccount(ctx, tx, accountNumber)
		if err != nil {
			return err
		}
		if account.AccountStatus == store.AccountStatusClosed {
			return nil
		}
		if account.Balance != 0 {
			return bank.ErrAccountNotEmpty
		}
		return s.accounts.SetStatus(ctx, tx, account.ID, store.AccountStatusClosed)
	})
}

// Reconcile replays the account's ledger entries from a zero opening balance
// and compares the sum with the stored balance.
func (s *AccountService) Reconcile(ctx context.Context, accountNumber string) (ReconciliationReport, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReconciliationReport{}, bank.ErrAccountNotFound
		}
		return ReconciliationReport{}, err
	}
	sum, err := s.sums.SignedSumByAccount(ctx, account.ID)
	if err != nil {
		return ReconciliationReport{}, err
	}
	return ReconciliationReport{
		AccountNumber: account.AccountNumber,
		StoredBalance: account.Balance,
		LedgerSum:     sum,
		Difference:    account.Balance - sum,
	}, nil
}

func (s *AccountService) lockAccount(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, bank.ErrAccountNotFound
		}
		return store.Account{}, err
	}
	return account, nil
}
