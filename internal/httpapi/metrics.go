package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"modeld/internal/manager"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeld",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "modeld",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "modeld",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests",
		},
		[]string{"path"},
	)

	backpressureTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeld",
			Subsystem: "http",
			Name:      "backpressure_total",
			Help:      "Total backpressure rejections (503 InsufficientMemory/NoUsableDevice)",
		},
		[]string{"reason"},
	)

	modelLifecycleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeld",
			Subsystem: "manager",
			Name:      "lifecycle_events_total",
			Help:      "Model lifecycle events by name",
		},
		[]string{"event"},
	)

	logSubscribersDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "modeld",
			Subsystem: "logs",
			Name:      "subscribers_dropped_total",
			Help:      "Log stream subscribers dropped for lagging",
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight,
		backpressureTotal, modelLifecycleTotal, logSubscribersDropped)
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

// MetricsMiddleware instruments requests for Prometheus, keyed by chi's
// route pattern rather than the raw path to bound label cardinality.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := routePatternOrPath(r)
		method := r.Method
		httpInflight.WithLabelValues(path).Inc()
		defer httpInflight.WithLabelValues(path).Dec()

		sr := &statusRecorder{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sr, r)
		statusLabel := itoa(sr.status)
		dur := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(path, method, statusLabel).Inc()
		httpRequestDuration.WithLabelValues(path, method, statusLabel).Observe(dur)
	})
}

func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// IncrementBackpressure is called when a routing attempt is rejected for
// InsufficientMemory or NoUsableDevice.
func IncrementBackpressure(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	backpressureTotal.WithLabelValues(reason).Inc()
}

// metricsPublisher adapts the lifecycle controller's event bus to Prometheus
// counters, matching the teacher's convention of a small EventPublisher
// implementation per observability sink.
type metricsPublisher struct{}

// NewMetricsPublisher returns an EventPublisher that counts lifecycle events
// by name in Prometheus. Combine it with other sinks via MultiPublisher.
func NewMetricsPublisher() manager.EventPublisher { return metricsPublisher{} }

func (metricsPublisher) Publish(e manager.Event) {
	modelLifecycleTotal.WithLabelValues(e.Name).Inc()
}

// multiPublisher fans one event out to several EventPublisher sinks, so a
// process can log, record accounting, and count metrics off a single
// Controller.Config.Publisher slot.
type multiPublisher []manager.EventPublisher

// MultiPublisher combines several EventPublisher sinks into one.
func MultiPublisher(pubs ...manager.EventPublisher) manager.EventPublisher {
	return multiPublisher(pubs)
}

func (m multiPublisher) Publish(e manager.Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
