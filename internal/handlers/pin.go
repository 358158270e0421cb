package handlers

import (
	"encoding/json"
	"net/http"

	"bankingportal/internal/middleware"
)

type createPINRequest struct {
	PIN string `json:"pin"`
}

func (h *Handler) CreatePIN(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.accountSvc.CreatePIN(r.Context(), accountNumber, req.PIN); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "pin created"})
}

type updatePINRequest struct {
	OldPIN string `json:"old_pin"`
	NewPIN string `json:"new_pin"`
}

func (h *Handler) UpdatePIN(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updatePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.accountSvc.UpdatePIN(r.Context(), accountNumber, req.OldPIN, req.NewPIN); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "pin updated"})
}

func (h *Handler) PINStatus(w http.ResponseWriter, r *http.Request) {
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
	hasPIN := account.PINHash != nil && *account.PINHash != ""
	respondJSON(w, http.StatusOK, map[string]bool{"has_pin": hasPIN})
}
