// Package metrics exposes Prometheus collectors for RPC traffic and
// settlement computations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kate"

var (
	registry = prometheus.NewRegistry()

	rpcRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "RPC calls by procedure and result code.",
	}, []string{"procedure", "code"})

	rpcDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC latency by procedure.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	settlementRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_runs_total",
		Help:      "Settlement computations by outcome.",
	}, []string{"outcome"})

	settlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_duration_seconds",
		Help:      "Time to compute balances, plan transfers and assemble the summary.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	transfersPlanned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_transfers",
		Help:      "Number of transfers in a computed plan.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	excludedProcurements = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_excluded_procurements_total",
		Help:      "Procurements left out of a computation because of an invalid amount.",
	})

	paymentMarks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_marks_total",
		Help:      "Paid/unpaid toggles applied by organizers.",
	}, []string{"paid"})

	notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Bot messages sent to participants by delivery result.",
	}, []string{"result"})
)

// Settlement outcomes.
const (
	OutcomeOK                 = "ok"
	OutcomeUnknownParticipant = "unknown_participant"
	OutcomeUnbalanced         = "unbalanced"
	OutcomeError              = "error"
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		rpcRequests,
		rpcDuration,
		settlementRuns,
		settlementDuration,
		transfersPlanned,
		excludedProcurements,
		paymentMarks,
		notifications,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveRPC records one finished RPC call.
func ObserveRPC(procedure, code string, elapsed time.Duration) {
	rpcRequests.WithLabelValues(procedure, code).Inc()
	rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveSettlement records one settlement computation.
func ObserveSettlement(outcome string, elapsed time.Duration, transfers, excluded int) {
	settlementRuns.WithLabelValues(outcome).Inc()
	settlementDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		transfersPlanned.Observe(float64(transfers))
	}
	if excluded > 0 {
		excludedProcurements.Add(float64(excluded))
	}
}

// ObservePaymentMark records a paid flag change.
func ObservePaymentMark(paid bool) {
	label := "false"
	if paid {
		label = "true"
	}
	paymentMarks.WithLabelValues(label).Inc()
}

// ObserveNotification records one bot delivery attempt.
func ObserveNotification(delivered bool) {
	result := "failed"
	if delivered {
		result = "delivered"
	}
	notifications.WithLabelValues(result).Inc()
}
