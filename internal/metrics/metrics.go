package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardiff_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stardiff_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	comparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardiff_comparisons_total",
			Help: "Comparisons run, by report mode and outcome (ok, degenerate_frame, invalid).",
		},
		[]string{"mode", "outcome"},
	)

	comparisonDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stardiff_comparison_duration_seconds",
			Help:    "Time spent rendering a comparison report.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"mode"},
	)

	comparedEpochs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stardiff_compared_epochs",
			Help:    "Number of epochs per comparison.",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		},
	)

	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stardiff_propagations_total",
			Help: "SGP4 state evaluations, by result.",
		},
		[]string{"result"},
	)

	propagationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stardiff_propagation_duration_seconds",
			Help:    "Time to propagate one state series.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		comparisonsTotal,
		comparisonDurationSeconds,
		comparedEpochs,
		propagationsTotal,
		propagationDurationSeconds,
	)
}

// Comparison outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeDegenerateFrame = "degenerate_frame"
	OutcomeInvalid         = "invalid"
)

// RecordComparison records one comparison run.
func RecordComparison(mode, outcome string, epochs int, duration time.Duration) {
	comparisonsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome == OutcomeInvalid {
		return
	}
	comparisonDurationSeconds.WithLabelValues(mode).Observe(duration.Seconds())
	comparedEpochs.Observe(float64(epochs))
}

// RecordPropagation records the result of propagating one state series.
func RecordPropagation(duration time.Duration, success, errors int) {
	propagationsTotal.WithLabelValues("success").Add(float64(success))
	propagationsTotal.WithLabelValues("error").Add(float64(errors))
	propagationDurationSeconds.Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// knownRoutes are the only path labels emitted; anything else is "other".
var knownRoutes = map[string]bool{
	"/":                   true,
	"/healthz":            true,
	"/readyz":             true,
	"/metrics":            true,
	"/api/v1/compare":     true,
	"/api/v1/compare/tle": true,
	"/api/v1/modes":       true,
}

// normalizeRoute bounds the cardinality of the path label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		path := normalizeRoute(r.URL.Path)
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
		httpDurationSeconds.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}
