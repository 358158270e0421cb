package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"bankingportal/internal/notify"
	"bankingportal/internal/store"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubAccountStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, accountNumber, userID string) error
	getByNumberFn   func(ctx context.Context, accountNumber string) (store.Account, error)
	getByUserFn     func(ctx context.Context, userID string) (store.Account, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error)
	updateBalanceFn func(ctx context.Context, tx store.Execer, accountID string, balance int64) error
	setPINHashFn    func(ctx context.Context, tx store.Execer, accountID, pinHash string) error
	setStatusFn     func(ctx context.Context, tx store.Execer, accountID, status string) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, id, accountNumber, userID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, accountNumber, userID)
}

func (s stubAccountStore) GetByNumber(ctx context.Context, accountNumber string) (store.Account, error) {
	if s.getByNumberFn == nil {
		return store.Account{}, sql.ErrNoRows
	}
	return s.getByNumberFn(ctx, accountNumber)
}

func (s stubAccountStore) GetByUser(ctx context.Context, userID string) (store.Account, error) {
	if s.getByUserFn == nil {
		return store.Account{}, sql.ErrNoRows
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error) {
	return s.getForUpdateFn(ctx, tx, accountNumber)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

func (s stubAccountStore) SetPINHash(ctx context.Context, tx store.Execer, accountID, pinHash string) error {
	if s.setPINHashFn == nil {
		return nil
	}
	return s.setPINHashFn(ctx, tx, accountID, pinHash)
}

func (s stubAccountStore) SetStatus(ctx context.Context, tx store.Execer, accountID, status string) error {
	if s.setStatusFn == nil {
		return nil
	}
	return s.setStatusFn(ctx, tx, accountID, status)
}

type stubTransactionStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

type stubLedgerSums struct {
	sumFn func(ctx context.Context, accountID string) (int64, error)
}

func (s stubLedgerSums) SignedSumByAccount(ctx context.Context, accountID string) (int64, error) {
	if s.sumFn == nil {
		return 0, nil
	}
	return s.sumFn(ctx, accountID)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.TransactionEvent
}

func (n *recordingNotifier) TransactionCompleted(event notify.TransactionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []notify.TransactionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.TransactionEvent(nil), n.events...)
}

// memoryTokenStore backs token-service tests with a map keyed by token string.
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]store.Token
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]store.Token)}
}

func (m *memoryTokenStore) Insert(ctx context.Context, id, token, accountID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = store.Token{ID: id, Token: token, AccountID: accountID, ExpiresAt: expiresAt}
	return nil
}

func (m *memoryTokenStore) GetByToken(ctx context.Context, token string) (store.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.tokens[token]
	if !ok {
		return store.Token{}, sql.ErrNoRows
	}
	return row, nil
}

func (m *memoryTokenStore) Delete(ctx context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token]; !ok {
		return 0, nil
	}
	delete(m.tokens, token)
	return 1, nil
}

func (m *memoryTokenStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for token, row := range m.tokens {
		if !row.ExpiresAt.After(cutoff) {
			delete(m.tokens, token)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryTokenStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// memoryBank emulates the account and transaction tables for concurrency
// tests; its tx runner serializes transactions the way the serializable
// isolation level would.
type memoryBank struct {
	mu       sync.Mutex
	accounts map[string]store.Account
	entries  []store.TransactionInput
}

func newMemoryBank(accounts ...store.Account) *memoryBank {
	bankState := &memoryBank{accounts: make(map[string]store.Account)}
	for _, account := range accounts {
		bankState.accounts[account.AccountNumber] = account
	}
	return bankState
}

func (b *memoryBank) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(nil)
}

func (b *memoryBank) GetByNumber(ctx context.Context, accountNumber string) (store.Account, error) {
	account, ok := b.accounts[accountNumber]
	if !ok {
		return store.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (b *memoryBank) GetForUpdate(ctx context.Context, tx store.Getter, accountNumber string) (store.Account, error) {
	return b.GetByNumber(ctx, accountNumber)
}

func (b *memoryBank) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error {
	for number, account := range b.accounts {
		if account.ID == accountID {
			account.Balance = balance
			b.accounts[number] = account
			return nil
		}
	}
	return sql.ErrNoRows
}

func (b *memoryBank) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	b.entries = append(b.entries, input)
	return nil
}
