package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	installAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quillpress",
		Subsystem: "installer",
		Name:      "attempts_total",
		Help:      "Install attempts by outcome. Failed attempts are labeled with the stage that failed.",
	}, []string{"outcome"})

	installDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quillpress",
		Subsystem: "installer",
		Name:      "duration_seconds",
		Help:      "Wall-clock duration of install attempts.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordInstallAttempt counts one finished install attempt. The outcome
// is "success" or the name of the failing stage.
func RecordInstallAttempt(outcome string, duration time.Duration) {
	installAttempts.WithLabelValues(outcome).Inc()
	installDuration.Observe(duration.Seconds())
}

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on addr. The name parameter
// tags the landing page.
func New(name, addr string) (*MetricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name + " metrics: see /metrics\n"))
	})

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
