package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion pipeline

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_api_calls_total",
			Help: "Total number of stats.nba.com API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_fetch_retries_total",
			Help: "Total number of thin-result game log retries",
		},
	)

	// Ingestion metrics
	PlayersIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_players_ingested_total",
			Help: "Total number of players ingested successfully",
		},
	)

	PlayersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_players_skipped_total",
			Help: "Total number of players skipped",
		},
		[]string{"reason"},
	)

	GameLogRowsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_game_log_rows_upserted_total",
			Help: "Total number of game log rows written",
		},
	)

	PlayerIngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nba_player_ingest_duration_seconds",
			Help:    "Duration of one player's ingestion in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	BatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_batch_runs_total",
			Help: "Total number of batch ingestion runs",
		},
		[]string{"status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_run_timestamp",
			Help: "Timestamp of last successful batch run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordFetchRetry records a thin-result retry
func RecordFetchRetry() {
	FetchRetriesTotal.Inc()
}

// RecordPlayerIngested records a successfully ingested player
func RecordPlayerIngested(rows int, duration float64) {
	PlayersIngested.Inc()
	GameLogRowsUpserted.Add(float64(rows))
	PlayerIngestDuration.Observe(duration)
}

// RecordPlayerSkipped records a skipped player
func RecordPlayerSkipped(reason string) {
	PlayersSkipped.WithLabelValues(reason).Inc()
}

// RecordBatchRun records a batch run outcome
func RecordBatchRun(status string) {
	BatchRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
