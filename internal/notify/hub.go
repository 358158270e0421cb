// Package notify delivers post-commit notifications. Delivery is
// fire-and-forget: a failed or slow consumer never affects the ledger
// operation that produced the event.
package notify

import (
	"encoding/json"
	"sync"
)

type TransactionEvent struct {
	AccountNumber       string `json:"account_number"`
	Type                string `json:"type"`
	Amount              string `json:"amount"`
	Balance             string `json:"balance"`
	CounterpartyAccount string `json:"counterparty_account,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(accountNumber string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountNumber] == nil {
		h.clients[accountNumber] = make(map[*Client]struct{})
	}
	h.clients[accountNumber][client] = struct{}{}
}

func (h *Hub) Unregister(accountNumber string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountNumber] == nil {
		return
	}
	delete(h.clients[accountNumber], client)
	if len(h.clients[accountNumber]) == 0 {
		delete(h.clients, accountNumber)
	}
}

// Broadcast pushes the event to every connected client of the account.
// Slow clients are skipped, never waited on.
func (h *Hub) Broadcast(accountNumber string, event TransactionEvent) {
	payload, _ := json.Marshal(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[accountNumber] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
