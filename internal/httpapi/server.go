package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modeld/internal/accounting"
	"modeld/internal/logstream"
	"modeld/internal/manager"
	"modeld/internal/registry"
)

// Deps bundles every backing component the HTTP surface routes against.
// Handlers hold a Deps by value; all fields are themselves safe for
// concurrent use.
type Deps struct {
	Controller *manager.Controller
	Store      *accounting.Store
	Devices    *registry.DeviceRegistry
	Logs       *logstream.FanOut
	StartedAt  time.Time
	DBPath     string
}

// NewMux builds the full HTTP surface: catalogued admin/analytics/billing
// endpoints plus the Routing Proxy, wrapped in the teacher's standard
// middleware stack (request id, real IP, panic recovery, compression,
// security headers, Prometheus instrumentation, opt-in CORS).
func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)

	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsAllowedOrigins,
			AllowedMethods:   corsAllowedMethods,
			AllowedHeaders:   corsAllowedHeaders,
			AllowCredentials: false,
		}))
	}

	registerGateway(r, d)
	registerProxy(r, d)
	registerAdmin(r, d)
	registerLogs(r, d)
	registerDevices(r, d)
	registerAnalytics(r, d)
	registerBilling(r, d)
	registerData(r, d)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}
