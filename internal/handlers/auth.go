package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"bankingportal/internal/auth"
	"bankingportal/internal/db"
	"bankingportal/internal/middleware"
	"bankingportal/internal/store"
	"bankingportal/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateUsername(req.Username); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	userID := uuid.NewString()
	var account store.Account
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.Create(r.Context(), tx, userID, req.Username, req.Email, passwordHash); err != nil {
			return err
		}
		account, err = h.accountSvc.Open(r.Context(), tx, userID)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			respondError(w, http.StatusConflict, "username or email already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	token, err := h.tokens.Issue(r.Context(), account.AccountNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	h.notifier.UserRegistered(account.AccountNumber, req.Email)
	respondJSON(w, http.StatusCreated, map[string]string{
		"token":          token,
		"account_number": account.AccountNumber,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	account, err := h.accountSvc.GetByUser(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	token, err := h.tokens.Issue(r.Context(), account.AccountNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.notifier.LoginSucceeded(account.AccountNumber, user.Email, r.RemoteAddr)
	respondJSON(w, http.StatusOK, map[string]string{
		"token":          token,
		"account_number": account.AccountNumber,
	})
}

// Logout revokes the presented token. Revoking an already revoked token is
// a no-op, so repeated logouts succeed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerTokenFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.tokens.Invalidate(r.Context(), token); err != nil {
		respondError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetByNumber(r.Context(), accountNumber)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	user, err := h.users.GetByID(r.Context(), account.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"username":       user.Username,
		"email":          user.Email,
		"account_number": account.AccountNumber,
		"created_at":     user.CreatedAt,
	})
}
