package observ

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus instrumentation for the trading pipeline.
var (
	// ActionsProcessed counts actions drained from the queue, by variant.
	ActionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optrader_actions_processed_total",
		Help: "Actions processed by the consumer loop",
	}, []string{"action"})

	// ActionFailures counts actions whose Process returned an error or panicked.
	ActionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optrader_action_failures_total",
		Help: "Actions that failed during processing",
	}, []string{"action"})

	// QueueDepth tracks the number of actions waiting in the queue.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "optrader_queue_depth",
		Help: "Actions currently waiting in the processing queue",
	})

	// FetchBatches counts completed ticker batches in the live fetcher.
	FetchBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_fetch_batches_total",
		Help: "Ticker batches dispatched by the live fetcher",
	})

	// FetchBatchTimeouts counts batches abandoned at the batch ceiling.
	FetchBatchTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_fetch_batch_timeouts_total",
		Help: "Ticker batches dropped after the batch timeout",
	})

	// QuoteRequests counts individual option chain requests by outcome.
	QuoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optrader_quote_requests_total",
		Help: "Option chain requests issued to the provider",
	}, []string{"status"})

	// PositionsEntered counts new entries and size increases.
	PositionsEntered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_positions_entered_total",
		Help: "Position entries recorded in the ledger",
	})

	// PositionsExited counts partial and full exits.
	PositionsExited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_positions_exited_total",
		Help: "Position exits recorded in the ledger",
	})

	// ChainsRecorded counts snapshots persisted for replay.
	ChainsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_chains_recorded_total",
		Help: "Option chain snapshots persisted to the store",
	})

	// ChainsReplayed counts snapshots re-enqueued by the replay fetcher.
	ChainsReplayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optrader_chains_replayed_total",
		Help: "Option chain snapshots read back during replay",
	})
)

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
