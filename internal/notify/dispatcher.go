package notify

import "log"

// Dispatcher fans completed-transaction and login events out to the
// websocket hub and the (log-backed) mail channel. Every path is
// best-effort; errors are logged and dropped.
type Dispatcher struct {
	hub *Hub
}

func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

func (d *Dispatcher) TransactionCompleted(event TransactionEvent) {
	d.hub.Broadcast(event.AccountNumber, event)
	if event.CounterpartyAccount != "" {
		d.hub.Broadcast(event.CounterpartyAccount, TransactionEvent{
			AccountNumber: event.CounterpartyAccount,
			Type:          event.Type,
			Amount:        event.Amount,
		})
	}
	go func() {
		log.Printf("notify: %s of %s on account %s", event.Type, event.Amount, event.AccountNumber)
	}()
}

func (d *Dispatcher) LoginSucceeded(accountNumber, email, remoteAddr string) {
	go func() {
		log.Printf("notify: login email to %s for account %s from %s", email, accountNumber, remoteAddr)
	}()
}

func (d *Dispatcher) UserRegistered(accountNumber, email string) {
	go func() {
		log.Printf("notify: welcome email to %s for account %s", email, accountNumber)
	}()
}
