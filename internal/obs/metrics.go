package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "service_ready",
		Help: "1 when the last readiness check passed.",
	})
)

// Domain metrics
var (
	consentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consent_transitions_total",
			Help: "Consent status transitions applied on read.",
		},
		[]string{"from", "to"},
	)

	consentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consents_created_total",
		Help: "Consent requests accepted by the account aggregator.",
	})

	artifactsReleased = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "financial_artifacts_released_total",
			Help: "Financial artifacts released under an approved consent.",
		},
		[]string{"data_type"},
	)

	lenderDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lender_decisions_total",
			Help: "Loan decisions produced by the lender.",
		},
		[]string{"decision"},
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Latency of outbound calls to collaborating services.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation", "outcome"},
	)
)

var initOnce sync.Once

// Init registers all collectors in the default registry. Safe to call twice.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration, ready,
			consentTransitions, consentsCreated, artifactsReleased,
			lenderDecisions, upstreamDuration,
		)
	})
}

// Handler exposes the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetReady records the outcome of the last readiness check.
func SetReady(ok bool) {
	if ok {
		ready.Set(1)
		return
	}
	ready.Set(0)
}

func ConsentCreated() { consentsCreated.Inc() }

func ConsentTransition(from, to string) {
	consentTransitions.WithLabelValues(from, to).Inc()
}

func ArtifactReleased(dataType string) {
	artifactsReleased.WithLabelValues(dataType).Inc()
}

func LenderDecision(decision string) {
	lenderDecisions.WithLabelValues(decision).Inc()
}

// ObserveUpstream records one outbound call; outcome is "ok" or an error kind.
func ObserveUpstream(service, operation, outcome string, d time.Duration) {
	upstreamDuration.WithLabelValues(service, operation, outcome).Observe(d.Seconds())
}

// Instrument measures RPS, latency and in-flight requests.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// idRoutes lists path prefixes whose next segment is an identifier.
var idRoutes = []string{
	"/consent-status/",
	"/fetch-data/",
	"/aa/consent-status/",
	"/aa/fetch-data/",
	"/lender/status/",
	"/loan/consent/",
}

// CanonicalPath collapses identifiers so metric labels stay bounded.
func CanonicalPath(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return "/"
	}
	for _, prefix := range idRoutes {
		if !strings.HasPrefix(raw, prefix) {
			continue
		}
		rest := strings.TrimPrefix(raw, prefix)
		if rest == "" {
			return raw
		}
		id, tail, _ := strings.Cut(rest, "/")
		if id == "" {
			return raw
		}
		switch tail {
		case "":
			return prefix + ":id"
		case "data":
			if prefix == "/loan/consent/" {
				return prefix + ":id/data"
			}
		}
		return raw
	}
	return raw
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
