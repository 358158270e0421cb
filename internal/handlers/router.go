package handlers

import (
	"net/http"

	"bankingportal/internal/config"
	"bankingportal/internal/db"
	"bankingportal/internal/middleware"
	"bankingportal/internal/notify"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	transactions TransactionStore
	accountSvc   AccountService
	ledger       LedgerService
	tokens       TokenService
	notifier     Notifier
	hub          *notify.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, transactions TransactionStore, accountSvc AccountService, ledger LedgerService, tokens TokenService, notifier Notifier, hub *notify.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		accountSvc:   accountSvc,
		ledger:       ledger,
		tokens:       tokens,
		notifier:     notifier,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authed := middleware.Auth(h.tokens)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authed).Post("/logout", h.Logout)
		r.With(authed).Get("/me", h.Me)
	})
	router.Route("/api/account", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", h.GetAccount)
		r.Delete("/", h.CloseAccount)
		r.Get("/reconcile", h.Reconcile)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/pin", h.PINStatus)
		r.Post("/pin", h.CreatePIN)
		r.Put("/pin", h.UpdatePIN)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Post("/transfer", h.Transfer)
	})
	router.Get("/ws/notifications", h.WSNotifications)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return router
}
