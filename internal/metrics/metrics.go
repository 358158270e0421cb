package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_ledger_operations_total",
		Help: "Ledger operations by type and outcome.",
	}, []string{"operation", "outcome"})

	ledgerOperationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bank_ledger_operation_seconds",
		Help:    "Ledger operation latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	tokenValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bank_token_validations_total",
		Help: "Token validations by outcome.",
	}, []string{"outcome"})
)

func ObserveLedgerOperation(operation, outcome string, elapsed time.Duration) {
	ledgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
	ledgerOperationSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func CountTokenValidation(outcome string) {
	tokenValidationsTotal.WithLabelValues(outcome).Inc()
}
