package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"
)

func TestTokenStoreInsert(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)
	store := NewTokenStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO tokens") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 4 || args[1] != "jwt-string" || args[2] != "acc-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	if err := store.Insert(ctx, "tok-1", "jwt-string", "acc-1", expiry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTokenStoreDeleteReportsRows(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "DELETE FROM tokens WHERE token = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: 0}, nil
		},
	})
	rows, err := store.Delete(ctx, "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected 0 rows, got %d", rows)
	}
}

func TestTokenStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Now()
	store := NewTokenStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "expires_at <= $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != cutoff {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 3}, nil
		},
	})
	rows, err := store.DeleteExpired(ctx, cutoff)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 rows, got %d", rows)
	}
}
