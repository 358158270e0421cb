package handlers

import (
	"context"

	"bankingportal/internal/services"
	"bankingportal/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type AccountStore interface {
	GetByNumber(ctx context.Context, accountNumber string) (store.Account, error)
}

type TransactionStore interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]store.Transaction, error)
}

type AccountService interface {
	Open(ctx context.Context, tx store.Execer, userID string) (store.Account, error)
	Get(ctx context.Context, accountNumber string) (services.AccountSnapshot, error)
	GetByUser(ctx context.Context, userID string) (store.Account, error)
	CreatePIN(ctx context.Context, accountNumber, pinCode string) error
	UpdatePIN(ctx context.Context, accountNumber, oldPin, newPin string) error
	Close(ctx context.Context, accountNumber string) error
	Reconcile(ctx context.Context, accountNumber string) (services.ReconciliationReport, error)
}

type LedgerService interface {
	Deposit(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
	Withdraw(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
	Transfer(ctx context.Context, sourceNumber, targetNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
}

type TokenService interface {
	Issue(ctx context.Context, accountNumber string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Invalidate(ctx context.Context, token string) error
}

type Notifier interface {
	LoginSucceeded(accountNumber, email, remoteAddr string)
	UserRegistered(accountNumber, email string)
}
