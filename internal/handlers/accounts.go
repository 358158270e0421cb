package handlers

import (
	"net/http"

	"bankingportal/internal/middleware"
	"bankingportal/internal/money"
)

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	snapshot, err := h.accountSvc.Get(r.Context(), accountNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_number": snapshot.AccountNumber,
		"balance":        money.FormatMinor(snapshot.Balance),
		"account_type":   snapshot.AccountType,
	})
}

// Reconcile recomputes the account balance from the ledger and reports any
// drift against the stored balance. Difference is always zero on a healthy
// system.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	report, err := h.accountSvc.Reconcile(r.Context(), accountNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account_number": report.AccountNumber,
		"stored_balance": money.FormatMinor(report.StoredBalance),
		"ledger_sum":     money.FormatMinor(report.LedgerSum),
		"difference":     money.FormatMinor(report.Difference),
		"consistent":     report.Difference == 0,
	})
}

func (h *Handler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.accountSvc.Close(r.Context(), accountNumber); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
