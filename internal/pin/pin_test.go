package pin

import (
	"errors"
	"testing"

	"bankingportal/internal/bank"

	"golang.org/x/crypto/bcrypt"
)

func TestValidateFormat(t *testing.T) {
	guard := NewGuard(bcrypt.MinCost)
	valid := []string{"0000", "1234", "9999"}
	for _, pin := range valid {
		if err := guard.ValidateFormat(pin); err != nil {
			t.Fatalf("expected %q to be valid, got %v", pin, err)
		}
	}
	invalid := []string{"", "123", "12345", "12a4", "12 4", "１２３４", "-123"}
	for _, pin := range invalid {
		if err := guard.ValidateFormat(pin); !errors.Is(err, bank.ErrInvalidPINFormat) {
			t.Fatalf("expected %q to be rejected, got %v", pin, err)
		}
	}
}

func TestHashAndVerify(t *testing.T) {
	guard := NewGuard(bcrypt.MinCost)
	hash, err := guard.Hash("1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "1234" {
		t.Fatal("hash must not be the plaintext pin")
	}
	if err := guard.Verify(&hash, "1234"); err != nil {
		t.Fatalf("expected correct pin to verify, got %v", err)
	}
	if err := guard.Verify(&hash, "4321"); !errors.Is(err, bank.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHashRejectsBadFormat(t *testing.T) {
	guard := NewGuard(bcrypt.MinCost)
	if _, err := guard.Hash("12ab"); !errors.Is(err, bank.ErrInvalidPINFormat) {
		t.Fatalf("expected ErrInvalidPINFormat, got %v", err)
	}
}

func TestVerifyWithoutPIN(t *testing.T) {
	guard := NewGuard(bcrypt.MinCost)
	if err := guard.Verify(nil, "1234"); !errors.Is(err, bank.ErrPINNotSet) {
		t.Fatalf("expected ErrPINNotSet, got %v", err)
	}
	empty := ""
	if err := guard.Verify(&empty, "1234"); !errors.Is(err, bank.ErrPINNotSet) {
		t.Fatalf("expected ErrPINNotSet, got %v", err)
	}
}

func TestVerifyEmptyPresentedPIN(t *testing.T) {
	guard := NewGuard(bcrypt.MinCost)
	hash, err := guard.Hash("1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := guard.Verify(&hash, ""); !errors.Is(err, bank.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
