package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"lingod/internal/manager"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lingod",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lingod",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lingod",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	sessionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lingod",
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Capability session lifecycle events",
		},
		[]string{"feature", "event"},
	)

	sessionStepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lingod",
			Subsystem: "session",
			Name:      "step_duration_seconds",
			Help:      "Duration of instance creations and invocations",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"feature", "event"},
	)

	downloadPercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lingod",
			Subsystem: "session",
			Name:      "download_percent",
			Help:      "Model download progress of the current creation attempt",
		},
		[]string{"feature"},
	)

	modelReady = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "lingod",
			Subsystem: "session",
			Name:      "model_ready",
			Help:      "1 once the model became ready in this session",
		},
		[]string{"feature"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight,
		sessionEventsTotal, sessionStepDuration, downloadPercent, modelReady)
}

// statusRecorder wraps http.ResponseWriter to capture status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses streaming through the recorder.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware instruments requests for Prometheus
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr := &statusRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sr, r)
		// the route pattern is only known after routing
		path := routePatternOrPath(r)
		statusLabel := itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, r.Method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method, statusLabel).Observe(dur)
	})
}

// inflight tracks in-flight requests per route; mounted inside the router so
// the pattern is resolved.
func inflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePatternOrPath(r)
		httpInflight.WithLabelValues(path).Inc()
		defer httpInflight.WithLabelValues(path).Dec()
		next.ServeHTTP(w, r)
	})
}

// routePatternOrPath returns the chi route pattern if available, otherwise
// falls back to URL path. This avoids high-cardinality label values.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// EventMetrics returns a publisher that turns session events into metrics.
func EventMetrics() manager.EventPublisher {
	return manager.PublisherFunc(observeEvent)
}

func observeEvent(e manager.Event) {
	sessionEventsTotal.WithLabelValues(e.Feature, e.Name).Inc()
	switch e.Name {
	case manager.EventDownloadProgress:
		if p, ok := e.Fields["percent"].(float64); ok {
			downloadPercent.WithLabelValues(e.Feature).Set(p)
		}
	case manager.EventDownloadComplete:
		downloadPercent.WithLabelValues(e.Feature).Set(100)
	case manager.EventModelReady:
		modelReady.WithLabelValues(e.Feature).Set(1)
	case manager.EventCreateReady, manager.EventCreateFailed, manager.EventInvokeDone, manager.EventInvokeFailed:
		if ms, ok := durationMillis(e.Fields["dur_ms"]); ok {
			sessionStepDuration.WithLabelValues(e.Feature, e.Name).Observe(ms / 1000)
		}
	}
}

func durationMillis(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// fast integer to ascii for small set of status codes
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
