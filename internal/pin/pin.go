// Package pin validates, hashes and verifies the 4-digit PIN gating
// monetary operations. The PIN is a secondary credential, distinct from
// the login password; only its bcrypt hash is stored.
package pin

import (
	"bankingportal/internal/bank"

	"golang.org/x/crypto/bcrypt"
)

type Guard struct {
	cost int
}

func NewGuard(cost int) *Guard {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Guard{cost: cost}
}

// ValidateFormat requires exactly 4 ASCII digits.
func (g *Guard) ValidateFormat(pin string) error {
	if len(pin) != 4 {
		return bank.ErrInvalidPINFormat
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return bank.ErrInvalidPINFormat
		}
	}
	return nil
}

func (g *Guard) Hash(pin string) (string, error) {
	if err := g.ValidateFormat(pin); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), g.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compares the presented PIN against the stored hash. The bcrypt
// comparison is constant-time over the hash, never a plaintext equality.
func (g *Guard) Verify(pinHash *string, presented string) error {
	if pinHash == nil || *pinHash == "" {
		return bank.ErrPINNotSet
	}
	if presented == "" {
		return bank.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*pinHash), []byte(presented)); err != nil {
		return bank.ErrUnauthorized
	}
	return nil
}
