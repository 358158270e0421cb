package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bankingportal/internal/bank"
	"bankingportal/internal/db"
	"bankingportal/internal/metrics"
	"bankingportal/internal/money"
	"bankingportal/internal/notify"
	"bankingportal/internal/pin"
	"bankingportal/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountStore interface {
	GetByNumber(ctx context.Context, accountNumber string) (store.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

type Notifier interface {
	TransactionCompleted(event notify.TransactionEvent)
}

type AccountSnapshot struct {
	AccountNumber string
	Balance       int64
	AccountType   string
}

// LedgerService is the transaction engine: every monetary operation runs as
// one serializable transaction that locks the touched account rows, mutates
// balances and appends exactly one ledger entry.
type LedgerService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	guard        *pin.Guard
	notifier     Notifier
	maxAmount    int64
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, guard *pin.Guard, notifier Notifier, maxAmountMinor int64) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		guard:        guard,
		notifier:     notifier,
		maxAmount:    maxAmountMinor,
	}
}

func (s *LedgerService) Deposit(ctx context.Context, accountNumber, pinCode string, amount int64) (AccountSnapshot, error) {
	start := time.Now()
	var snapshot AccountSnapshot
	err := s.validateAmount(amount)
	if err == nil {
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			account, lockErr := s.lockActiveAccount(ctx, tx, accountNumber)
			if lockErr != nil {
				return lockErr
			}
			if verifyErr := s.guard.Verify(account.PINHash, pinCode); verifyErr != nil {
				return verifyErr
			}
			newBalance := account.Balance + amount
			if updateErr := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance); updateErr != nil {
				return updateErr
			}
			if createErr := s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:              uuid.NewString(),
				Amount:          amount,
				Type:            store.TransactionTypeDeposit,
				SourceAccountID: account.ID,
			}); createErr != nil {
				return createErr
			}
			snapshot = AccountSnapshot{AccountNumber: account.AccountNumber, Balance: newBalance, AccountType: account.AccountType}
			return nil
		})
	}
	metrics.ObserveLedgerOperation("deposit", outcomeLabel(err), time.Since(start))
	if err != nil {
		return AccountSnapshot{}, err
	}
	s.notifier.TransactionCompleted(notify.TransactionEvent{
		AccountNumber: snapshot.AccountNumber,
		Type:          store.TransactionTypeDeposit,
		Amount:        money.FormatMinor(amount),
		Balance:       money.FormatMinor(snapshot.Balance),
	})
	return snapshot, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, accountNumber, pinCode string, amount int64) (AccountSnapshot, error) {
	start := time.Now()
	var snapshot AccountSnapshot
	err := s.validateAmount(amount)
	if err == nil {
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			account, lockErr := s.lockActiveAccount(ctx, tx, accountNumber)
			if lockErr != nil {
				return lockErr
			}
			if verifyErr := s.guard.Verify(account.PINHash, pinCode); verifyErr != nil {
				return verifyErr
			}
			if account.Balance < amount {
				return bank.ErrInsufficientFunds
			}
			newBalance := account.Balance - amount
			if updateErr := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance); updateErr != nil {
				return updateErr
			}
			if createErr := s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:              uuid.NewString(),
				Amount:          amount,
				Type:            store.TransactionTypeWithdrawal,
				SourceAccountID: account.ID,
			}); createErr != nil {
				return createErr
			}
			snapshot = AccountSnapshot{AccountNumber: account.AccountNumber, Balance: newBalance, AccountType: account.AccountType}
			return nil
		})
	}
	metrics.ObserveLedgerOperation("withdraw", outcomeLabel(err), time.Since(start))
	if err != nil {
		return AccountSnapshot{}, err
	}
	s.notifier.TransactionCompleted(notify.TransactionEvent{
		AccountNumber: snapshot.AccountNumber,
		Type:          store.TransactionTypeWithdrawal,
		Amount:        money.FormatMinor(amount),
		Balance:       money.FormatMinor(snapshot.Balance),
	})
	return snapshot, nil
}

// Transfer debits the source and credits the target in one transaction with
// one dual-referenced ledger entry. Self-transfers are rejected outright.
func (s *LedgerService) Transfer(ctx context.Context, sourceNumber, targetNumber, pinCode string, amount int64) (AccountSnapshot, error) {
	start := time.Now()
	var snapshot AccountSnapshot
	err := s.validateAmount(amount)
	if err == nil && sourceNumber == targetNumber {
		err = bank.ErrSameAccountTransfer
	}
	if err == nil {
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			source, target, lockErr := s.lockAccountPair(ctx, tx, sourceNumber, targetNumber)
			if lockErr != nil {
				return lockErr
			}
			if source.AccountStatus == store.AccountStatusClosed || target.AccountStatus == store.AccountStatusClosed {
				return bank.ErrAccountClosed
			}
			if verifyErr := s.guard.Verify(source.PINHash, pinCode); verifyErr != nil {
				return verifyErr
			}
			if source.Balance < amount {
				return bank.ErrInsufficientFunds
			}
			newSource := source.Balance - amount
			newTarget := target.Balance + amount
			if updateErr := s.accounts.UpdateBalance(ctx, tx, source.ID, newSource); updateErr != nil {
				return updateErr
			}
			if updateErr := s.accounts.UpdateBalance(ctx, tx, target.ID, newTarget); updateErr != nil {
				return updateErr
			}
			if createErr := s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:              uuid.NewString(),
				Amount:          amount,
				Type:            store.TransactionTypeTransfer,
				SourceAccountID: source.ID,
				TargetAccountID: &target.ID,
			}); createErr != nil {
				return createErr
			}
			snapshot = AccountSnapshot{AccountNumber: source.AccountNumber, Balance: newSource, AccountType: source.AccountType}
			return nil
		})
	}
	metrics.ObserveLedgerOperation("transfer", outcomeLabel(err), time.Since(start))
	if err != nil {
		return AccountSnapshot{}, err
	}
	s.notifier.TransactionCompleted(notify.TransactionEvent{
		AccountNumber:       snapshot.AccountNumber,
		Type:                store.TransactionTypeTransfer,
		Amount:              money.FormatMinor(amount),
		Balance:             money.FormatMinor(snapshot.Balance),
		CounterpartyAccount: targetNumber,
	})
	return snapshot, nil
}

func (s *LedgerService) validateAmount(amount int64) error {
	if amount <= 0 {
		return bank.ErrInvalidAmount
	}
	if amount > s.maxAmount {
		return bank.ErrAmountOverCeiling
	}
	return nil
}

func (s *LedgerService) lockActiveAccount(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error) {
	account, err := s.accounts.GetForUpdate(ctx, tx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, bank.ErrAccountNotFound
		}
		return store.Account{}, err
	}
	if account.AccountStatus == store.AccountStatusClosed {
		return store.Account{}, bank.ErrAccountClosed
	}
	return account, nil
}

// lockAccountPair locks both rows in ascending account-number order so two
// opposite-direction transfers can never deadlock each other.
func (s *LedgerService) lockAccountPair(ctx context.Context, tx store.Getter, firstNumber, secondNumber string) (store.Account, store.Account, error) {
	leftNumber, rightNumber := firstNumber, secondNumber
	if leftNumber > rightNumber {
		leftNumber, rightNumber = rightNumber, leftNumber
	}
	left, err := s.accounts.GetForUpdate(ctx, tx, leftNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, store.Account{}, bank.ErrAccountNotFound
		}
		return store.Account{}, store.Account{}, err
	}
	right, err := s.accounts.GetForUpdate(ctx, tx, rightNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, store.Account{}, bank.ErrAccountNotFound
		}
		return store.Account{}, store.Account{}, err
	}
	if firstNumber == leftNumber {
		return left, right, nil
	}
	return right, left, nil
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return "failed"
}
