package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bankingportal/internal/middleware"
	"bankingportal/internal/money"
	"bankingportal/internal/services"
	"bankingportal/internal/store"
)

type depositRequest struct {
	PIN    string `json:"pin"`
	Amount string `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := money.ParseMinor(req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	snapshot, err := h.ledger.Deposit(r.Context(), accountNumber, req.PIN, amountMinor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSnapshot(w, snapshot)
}

type withdrawRequest struct {
	PIN    string `json:"pin"`
	Amount string `json:"amount"`
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := money.ParseMinor(req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	snapshot, err := h.ledger.Withdraw(r.Context(), accountNumber, req.PIN, amountMinor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSnapshot(w, snapshot)
}

type transferRequest struct {
	PIN                 string `json:"pin"`
	Amount              string `json:"amount"`
	TargetAccountNumber string `json:"target_account_number"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	accountNumber, ok := middleware.AccountNumberFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.TargetAccountNumber == "" {
		respondError(w, http.StatusBadRequest, "target_account_number is required")
		return
	}
	amountMinor, err := money.ParseMinor(req.Amount)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	snapshot, err := h.ledger.Transfer(r.Context(), accountNumber, req.TargetAccountNumber, req.PIN, amountMinor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSnapshot(w, snapshot)
}

func respondSnapshot(w http.ResponseWriter, snapshot services.AccountSnapshot) {
	respondJSON(w, http.StatusOK, map[string]any{
		"account_number": snapshot.AccountNumber,
		"balance":        money.FormatMinor(snapshot.Balance),
		"account_type":   snapshot.AccountType,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
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
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByAccount(r.Context(), account.ID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, row := range transactions {
		entry := map[string]any{
			"id":         row.ID,
			"type":       row.Type,
			"amount":     money.FormatMinor(row.Amount),
			"created_at": row.CreatedAt,
		}
		if row.Type == store.TransactionTypeTransfer && row.TargetAccountID != nil {
			if row.SourceAccountID == account.ID {
				entry["direction"] = "outgoing"
			} else {
				entry["direction"] = "incoming"
			}
		}
		normalized = append(normalized, entry)
	}
	respondJSON(w, http.StatusOK, normalized)
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
