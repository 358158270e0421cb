package auth

import (
	"testing"
	"time"

	"bankingportal/internal/bank"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, expiresAt, err := GenerateToken("secret", "123456", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expiry must be in the future")
	}
	subject, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "123456" {
		t.Fatalf("expected subject 123456, got %s", subject)
	}
}

func TestParseTokenReasons(t *testing.T) {
	expired, _, err := GenerateToken("secret", "123456", -time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	wrongKey, _, err := GenerateToken("other-secret", "123456", time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	cases := []struct {
		name  string
		token string
		want  bank.TokenReason
	}{
		{"empty", "", bank.TokenEmpty},
		{"garbage", "not-a-jwt", bank.TokenMalformed},
		{"expired", expired, bank.TokenExpired},
		{"bad signature", wrongKey, bank.TokenBadSignature},
	}
	for _, tc := range cases {
		_, err := ParseToken("secret", tc.token)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		reason, ok := bank.TokenReasonOf(err)
		if !ok || reason != tc.want {
			t.Fatalf("%s: expected reason %s, got %v", tc.name, tc.want, err)
		}
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatal("expected password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch to fail")
	}
}
