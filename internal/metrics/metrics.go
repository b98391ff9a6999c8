// Package metrics exposes Prometheus counters for the trainer's moving
// parts, served together with a health check on a small HTTP listener.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// ReviewsRecorded counts ledger appends, labelled by outcome.
	ReviewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greekbot",
		Name:      "reviews_recorded_total",
		Help:      "Number of reviews appended to the ledger.",
	}, []string{"outcome"}) // pass / fail

	// MessagesSent counts proactive messages delivered, labelled by mode.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greekbot",
		Name:      "messages_sent_total",
		Help:      "Number of proactive messages sent.",
	}, []string{"mode"}) // teaching / recall / digest

	// WordsImported counts catalog entries added by the importer.
	WordsImported = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greekbot",
		Name:      "words_imported_total",
		Help:      "Number of vocabulary words imported.",
	})

	// DueWords tracks the size of the due set at the last scheduler tick.
	DueWords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "greekbot",
		Name:      "due_words",
		Help:      "Words due for review at the last check.",
	})
)

// Outcome label values for ReviewsRecorded.
const (
	OutcomePass = "pass"
	OutcomeFail = "fail"
)

// Serve runs the metrics/health listener until the process exits. Callers
// run it in a goroutine; failures are logged, not fatal.
func Serve(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics listener starting", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics listener failed", zap.Error(err))
	}
}
