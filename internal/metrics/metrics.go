package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelaysTotal counts relay requests by final status
	RelaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relays_total",
			Help: "Total number of relay requests by final status",
		},
		[]string{"status"},
	)

	// RelayDuration tracks end-to-end relay processing time
	RelayDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_relay_duration_seconds",
			Help:    "Relay processing duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 180, 300, 450},
		},
	)

	// TransferAmount tracks the amount of tokens relayed, in whole token units
	TransferAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bridge_transfer_amount",
			Help:    "Amount of tokens relayed, in whole token units",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000, 10000},
		},
	)

	// TransactionsSent counts mint transactions sent to the destination chain
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_transactions_sent_total",
			Help: "Total number of mint transactions sent",
		},
		[]string{"status"},
	)

	// ReconciliationsTotal counts status reconciliations against the
	// destination chain processed flag
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_reconciliations_total",
			Help: "Total number of status reconciliations by outcome",
		},
		[]string{"outcome"},
	)

	// ErrorsTotal counts errors by component and type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
