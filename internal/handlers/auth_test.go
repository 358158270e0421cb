package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bankingportal/internal/auth"
	"bankingportal/internal/store"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterSuccess(t *testing.T) {
	createdUsers := 0
	notifier := &recordingNotifier{}
	handler := newTestHandler(t, handlerDeps{
		users: stubUserStore{
			createFn: func(_ context.Context, _ store.Execer, _, _, _, _ string) error {
				createdUsers++
				return nil
			},
		},
		accountSvc: stubAccountService{
			openFn: func(_ context.Context, _ store.Execer, userID string) (store.Account, error) {
				return store.Account{ID: "acc-1", AccountNumber: "123456", UserID: userID}, nil
			},
		},
		notifier: notifier,
	})

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"Str0ngPass!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	recorder := doRequest(t, handler, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if createdUsers != 1 {
		t.Fatalf("expected one user created, got %d", createdUsers)
	}
	if notifier.registrations != 1 {
		t.Fatalf("expected one registration notification, got %d", notifier.registrations)
	}
	var resp map[string]string
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("expected a token in the response")
	}
	if resp["account_number"] != "123456" {
		t.Fatalf("expected account number 123456, got %q", resp["account_number"])
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	handler := newTestHandler(t, handlerDeps{})
	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"username":"alice","email":"not-an-email","password":"Str0ngPass!"}`},
		{"short username", `{"username":"a","email":"alice@example.com","password":"Str0ngPass!"}`},
		{"weak password", `{"username":"alice","email":"alice@example.com","password":"short"}`},
		{"broken json", `{"username":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			recorder := doRequest(t, handler, req)
			if recorder.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", recorder.Code)
			}
		})
	}
}

func TestRegisterDuplicateUserConflicts(t *testing.T) {
	handler := newTestHandler(t, handlerDeps{
		users: stubUserStore{
			createFn: func(context.Context, store.Execer, string, string, string, string) error {
				return uniqueViolationErr()
			},
		},
	})
	body := strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"Str0ngPass!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
	recorder := doRequest(t, handler, req)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", recorder.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	notifier := &recordingNotifier{}
	handler := newTestHandler(t, handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (store.User, error) {
				return store.User{ID: "user-1", Email: email, PasswordHash: string(passwordHash)}, nil
			},
		},
		accountSvc: stubAccountService{
			getByUserFn: func(context.Context, string) (store.Account, error) {
				return store.Account{AccountNumber: "123456"}, nil
			},
		},
		notifier: notifier,
	})

	body := strings.NewReader(`{"email":"alice@example.com","password":"Str0ngPass!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	recorder := doRequest(t, handler, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if notifier.logins != 1 {
		t.Fatalf("expected one login notification, got %d", notifier.logins)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	passwordHash, err := auth.HashPassword("Str0ngPass!")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	handler := newTestHandler(t, handlerDeps{
		users: stubUserStore{
			getByEmailFn: func(_ context.Context, email string) (store.User, error) {
				if email == "alice@example.com" {
					return store.User{ID: "user-1", Email: email, PasswordHash: passwordHash}, nil
				}
				return store.User{}, sql.ErrNoRows
			},
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"unknown email", `{"email":"bob@example.com","password":"Str0ngPass!"}`},
		{"wrong password", `{"email":"alice@example.com","password":"WrongPass1!"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
			recorder := doRequest(t, handler, req)
			if recorder.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d: %s", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	var invalidated string
	handler := newTestHandler(t, handlerDeps{
		tokens: stubTokenService{
			invalidateFn: func(_ context.Context, token string) error {
				invalidated = token
				return nil
			},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	recorder := doRequest(t, handler, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if invalidated != "some-token" {
		t.Fatalf("expected the presented token to be invalidated, got %q", invalidated)
	}
}

func TestAuthedRouteRejectsRevokedToken(t *testing.T) {
	handler := newTestHandler(t, handlerDeps{
		tokens: stubTokenService{
			validateFn: func(context.Context, string) (string, error) {
				return "", &revokedTokenError{}
			},
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/api/account/", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	recorder := doRequest(t, handler, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

type revokedTokenError struct{}

func (e *revokedTokenError) Error() string { return "token not found" }
