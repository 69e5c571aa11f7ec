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

// Console HTTP metrics
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
)

// Backend calls and guard decisions
var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_api_requests_total",
			Help: "Calls made to the backend API.",
		},
		[]string{"method", "route", "status"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_api_request_duration_seconds",
			Help:    "Backend API call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	guardDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_guard_decisions_total",
			Help: "Route guard resolutions per screen.",
		},
		[]string{"screen", "state"},
	)
)

var registerOnce sync.Once

// Init registers metrics in the default registry.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			backendRequestsTotal, backendRequestDuration, guardDecisionsTotal,
		)
	})
}

// Handler serves the Prometheus exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument measures request count, latency and in-flight requests.
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

// ObserveBackendCall records one backend call. status 0 means the call never
// produced a response.
func ObserveBackendCall(method, route string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	if route == "" {
		route = "other"
	}
	backendRequestsTotal.WithLabelValues(method, route, label).Inc()
	backendRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGuardDecision counts a guard resolution for screen.
func RecordGuardDecision(screen, state string) {
	guardDecisionsTotal.WithLabelValues(screen, state).Inc()
}

var (
	idCollections = map[string]bool{
		"clients": true,
		"credits": true,
		"tickets": true,
		"users":   true,
	}
	subResources = map[string]bool{
		"suspend":   true,
		"approve":   true,
		"reject":    true,
		"documents": true,
		"role":      true,
	}
)

// CanonicalPath folds resource ids out of path so metric labels stay bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || !idCollections[parts[0]] {
		return path
	}
	if len(parts) == 3 && !subResources[parts[2]] {
		return path
	}
	parts[1] = ":id"
	return "/" + strings.Join(parts, "/")
}

// statusWriter records the response code.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
