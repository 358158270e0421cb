package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankingportal/internal/config"
	"bankingportal/internal/db"
	"bankingportal/internal/handlers"
	"bankingportal/internal/notify"
	"bankingportal/internal/pin"
	"bankingportal/internal/services"
	"bankingportal/internal/store"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	tokens := store.NewTokenStore(database)
	txRunner := db.NewTxRunner(database)

	guard := pin.NewGuard(cfg.BcryptCost)
	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(hub)

	ledger := services.NewLedgerService(txRunner, accounts, transactions, guard, dispatcher, cfg.MaxTransactionMinor)
	accountSvc := services.NewAccountService(txRunner, accounts, transactions, guard)
	tokenSvc := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, tokens, accounts)

	// Expired token rows are purged opportunistically on validation; this
	// sweep catches tokens that expired without ever being presented again.
	go purgeExpiredTokens(tokenSvc)

	handler := handlers.New(txRunner, cfg, users, accounts, transactions, accountSvc, ledger, tokenSvc, dispatcher, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("banking portal API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func purgeExpiredTokens(tokens *services.TokenService) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		purged, err := tokens.PurgeExpired(context.Background())
		if err != nil {
			log.Printf("token purge failed: %v", err)
			continue
		}
		if purged > 0 {
			log.Printf("purged %d expired tokens", purged)
		}
	}
}
