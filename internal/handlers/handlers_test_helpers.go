package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bankingportal/internal/config"
	"bankingportal/internal/notify"
	"bankingportal/internal/services"
	"bankingportal/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func uniqueViolationErr() error {
	return &pq.Error{Code: "23505"}
}

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, sql.ErrNoRows
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	getByNumberFn func(ctx context.Context, accountNumber string) (store.Account, error)
}

func (s stubAccountStore) GetByNumber(ctx context.Context, accountNumber string) (store.Account, error) {
	if s.getByNumberFn == nil {
		return store.Account{}, sql.ErrNoRows
	}
	return s.getByNumberFn(ctx, accountNumber)
}

type stubTransactionStore struct {
	listByAccountFn func(ctx context.Context, accountID string, limit, offset int) ([]store.Transaction, error)
}

func (s stubTransactionStore) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]store.Transaction, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountID, limit, offset)
}

type stubAccountService struct {
	openFn      func(ctx context.Context, tx store.Execer, userID string) (store.Account, error)
	getFn       func(ctx context.Context, accountNumber string) (services.AccountSnapshot, error)
	getByUserFn func(ctx context.Context, userID string) (store.Account, error)
	createPINFn func(ctx context.Context, accountNumber, pinCode string) error
	updatePINFn func(ctx context.Context, accountNumber, oldPin, newPin string) error
	closeFn     func(ctx context.Context, accountNumber string) error
	reconcileFn func(ctx context.Context, accountNumber string) (services.ReconciliationReport, error)
}

func (s stubAccountService) Open(ctx context.Context, tx store.Execer, userID string) (store.Account, error) {
	if s.openFn == nil {
		return store.Account{AccountNumber: "123456", UserID: userID}, nil
	}
	return s.openFn(ctx, tx, userID)
}

func (s stubAccountService) Get(ctx context.Context, accountNumber string) (services.AccountSnapshot, error) {
	if s.getFn == nil {
		return services.AccountSnapshot{}, sql.ErrNoRows
	}
	return s.getFn(ctx, accountNumber)
}

func (s stubAccountService) GetByUser(ctx context.Context, userID string) (store.Account, error) {
	if s.getByUserFn == nil {
		return store.Account{}, sql.ErrNoRows
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubAccountService) CreatePIN(ctx context.Context, accountNumber, pinCode string) error {
	if s.createPINFn == nil {
		return nil
	}
	return s.createPINFn(ctx, accountNumber, pinCode)
}

func (s stubAccountService) UpdatePIN(ctx context.Context, accountNumber, oldPin, newPin string) error {
	if s.updatePINFn == nil {
		return nil
	}
	return s.updatePINFn(ctx, accountNumber, oldPin, newPin)
}

func (s stubAccountService) Close(ctx context.Context, accountNumber string) error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn(ctx, accountNumber)
}

func (s stubAccountService) Reconcile(ctx context.Context, accountNumber string) (services.ReconciliationReport, error) {
	if s.reconcileFn == nil {
		return services.ReconciliationReport{AccountNumber: accountNumber}, nil
	}
	return s.reconcileFn(ctx, accountNumber)
}

type stubLedgerService struct {
	depositFn  func(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
	withdrawFn func(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
	transferFn func(ctx context.Context, sourceNumber, targetNumber, pinCode string, amount int64) (services.AccountSnapshot, error)
}

func (s stubLedgerService) Deposit(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error) {
	if s.depositFn == nil {
		return services.AccountSnapshot{AccountNumber: accountNumber}, nil
	}
	return s.depositFn(ctx, accountNumber, pinCode, amount)
}

func (s stubLedgerService) Withdraw(ctx context.Context, accountNumber, pinCode string, amount int64) (services.AccountSnapshot, error) {
	if s.withdrawFn == nil {
		return services.AccountSnapshot{AccountNumber: accountNumber}, nil
	}
	return s.withdrawFn(ctx, accountNumber, pinCode, amount)
}

func (s stubLedgerService) Transfer(ctx context.Context, sourceNumber, targetNumber, pinCode string, amount int64) (services.AccountSnapshot, error) {
	if s.transferFn == nil {
		return services.AccountSnapshot{AccountNumber: sourceNumber}, nil
	}
	return s.transferFn(ctx, sourceNumber, targetNumber, pinCode, amount)
}

type stubTokenService struct {
	issueFn      func(ctx context.Context, accountNumber string) (string, error)
	validateFn   func(ctx context.Context, token string) (string, error)
	invalidateFn func(ctx context.Context, token string) error
}

func (s stubTokenService) Issue(ctx context.Context, accountNumber string) (string, error) {
	if s.issueFn == nil {
		return "test-token", nil
	}
	return s.issueFn(ctx, accountNumber)
}

func (s stubTokenService) Validate(ctx context.Context, token string) (string, error) {
	if s.validateFn == nil {
		return "123456", nil
	}
	return s.validateFn(ctx, token)
}

func (s stubTokenService) Invalidate(ctx context.Context, token string) error {
	if s.invalidateFn == nil {
		return nil
	}
	return s.invalidateFn(ctx, token)
}

type recordingNotifier struct {
	logins        int
	registrations int
}

func (n *recordingNotifier) LoginSucceeded(accountNumber, email, remoteAddr string) {
	n.logins++
}

func (n *recordingNotifier) UserRegistered(accountNumber, email string) {
	n.registrations++
}

type handlerDeps struct {
	txRunner     fakeTxRunner
	users        stubUserStore
	accounts     stubAccountStore
	transactions stubTransactionStore
	accountSvc   stubAccountService
	ledger       stubLedgerService
	tokens       stubTokenService
	notifier     *recordingNotifier
}

func newTestHandler(t *testing.T, deps handlerDeps) *Handler {
	t.Helper()
	if deps.notifier == nil {
		deps.notifier = &recordingNotifier{}
	}
	cfg := config.Config{
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		AllowedOrigins:      "*",
		MaxTransactionMinor: 10000000,
	}
	hub := notify.NewHub()
	return New(deps.txRunner, cfg, deps.users, deps.accounts, deps.transactions, deps.accountSvc, deps.ledger, deps.tokens, deps.notifier, hub)
}

func doRequest(t *testing.T, handler *Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, req)
	return recorder
}
