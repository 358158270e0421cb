package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bankingportal/internal/bank"
	"bankingportal/internal/money"
	"bankingportal/internal/validator"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the error taxonomy onto stable statuses. Each
// error kind keeps a distinct message so clients can tell failures apart.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bank.ErrAccountNotFound),
		errors.Is(err, bank.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bank.ErrInvalidAmount),
		errors.Is(err, bank.ErrAmountOverCeiling),
		errors.Is(err, bank.ErrInvalidPINFormat),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrTooManyDecimals),
		errors.Is(err, validator.ErrInvalidEmail),
		errors.Is(err, validator.ErrInvalidUsername),
		errors.Is(err, validator.ErrInvalidPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrUnauthorized),
		errors.Is(err, bank.ErrPINNotSet):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, bank.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, bank.ErrPINAlreadySet),
		errors.Is(err, bank.ErrSameAccountTransfer),
		errors.Is(err, bank.ErrDuplicateToken),
		errors.Is(err, bank.ErrTxConflict),
		errors.Is(err, bank.ErrAccountNotEmpty),
		errors.Is(err, bank.ErrAccountClosed):
		respondError(w, http.StatusConflict, err.Error())
	default:
		if _, ok := bank.TokenReasonOf(err); ok {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
