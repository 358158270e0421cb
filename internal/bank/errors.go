// Package bank defines the error taxonomy shared by the ledger, PIN and
// token services. Handlers map these values onto stable HTTP statuses.
package bank

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountClosed       = errors.New("account is closed")
	ErrAccountNotEmpty     = errors.New("account balance must be zero")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountOverCeiling   = errors.New("amount exceeds per-transaction limit")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnauthorized        = errors.New("invalid pin")
	ErrInvalidPINFormat    = errors.New("pin must be exactly 4 digits")
	ErrPINAlreadySet       = errors.New("pin already exists")
	ErrPINNotSet           = errors.New("pin not set")
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	ErrDuplicateToken      = errors.New("token already exists")
	ErrTxConflict          = errors.New("transaction conflict, retries exhausted")
)

type TokenReason string

const (
	TokenEmpty             TokenReason = "EMPTY"
	TokenMalformed         TokenReason = "MALFORMED"
	TokenUnsupportedFormat TokenReason = "UNSUPPORTED_FORMAT"
	TokenBadSignature      TokenReason = "BAD_SIGNATURE"
	TokenExpired           TokenReason = "EXPIRED"
	// TokenNotFound covers tokens whose signature and claims check out but
	// that have no persisted record, which is how revocation looks.
	TokenNotFound TokenReason = "NOT_FOUND"
)

type TokenError struct {
	Reason TokenReason
}

func (e *TokenError) Error() string {
	return "invalid token: " + string(e.Reason)
}

// TokenReasonOf extracts the rejection reason when err is a *TokenError.
func TokenReasonOf(err error) (TokenReason, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Reason, true
	}
	return "", false
}
