// Package api implements the HTTP handlers and middleware of the logistics service.
package api

import (
    "context"
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"
    "golang.org/x/time/rate"

    "logistica/internal/config"
    "logistica/internal/metrics"
    "logistica/internal/model"
    "logistica/internal/store"
)

// RoutePlanner answers shortest round-trip queries.
type RoutePlanner interface {
    ShortestRoute(ctx context.Context, names []string) (model.ShortestRouteResponse, error)
}

// Notifier queues outbound webhook events.
type Notifier interface {
    Enqueue(eventType string, data any) (string, error)
}

type Server struct {
    Store    store.Store
    Planner  RoutePlanner
    Broker   EventBroker
    Notifier Notifier
    Config   config.Config

    limiter *rate.Limiter
    now     func() time.Time
}

// NewServer wires a Server. broker and notifier may be nil; an in-memory
// broker is used and webhooks are skipped.
func NewServer(cfg config.Config, st store.Store, planner RoutePlanner, broker EventBroker, notifier Notifier) *Server {
    if broker == nil { broker = NewBroker() }
    s := &Server{Store: st, Planner: planner, Broker: broker, Notifier: notifier, Config: cfg, now: time.Now}
    if cfg.Rate.RPS > 0 {
        s.limiter = rate.NewLimiter(rate.Limit(cfg.Rate.RPS), cfg.Rate.Burst)
    }
    return s
}

// Handler returns the routed mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
    mux := http.NewServeMux()

    // Business queries
    mux.HandleFunc("POST /api/v1/logistic/shorter", s.ShorterHandler)
    mux.HandleFunc("GET /api/v1/logistic/routes", s.VehicleRoutesHandler)
    mux.HandleFunc("GET /api/v1/logistic/vehicules/travel", s.VehiclesInTravelHandler)
    mux.HandleFunc("GET /api/v1/logistic/vehicules/available", s.VehiclesAvailableHandler)
    mux.HandleFunc("POST /api/v1/logistic", s.CreateNodeRouteHandler)

    // Resources
    mux.HandleFunc("GET /api/v1/nodes", s.ListNodesHandler)
    mux.HandleFunc("POST /api/v1/nodes", s.CreateNodeHandler)
    mux.HandleFunc("GET /api/v1/routes", s.ListRoutesHandler)
    mux.HandleFunc("POST /api/v1/routes", s.CreateRouteHandler)
    mux.HandleFunc("POST /api/v1/vehicules", s.CreateVehicleHandler)
    mux.HandleFunc("PUT /api/v1/vehicules/{patent}/availability", s.AvailabilityHandler)

    // Streams
    mux.HandleFunc("GET /api/v1/vehicules/events/stream", s.VehicleEventsStreamHandler)
    mux.HandleFunc("GET /api/v1/vehicules/ws", s.VehicleEventsWSHandler)

    // Ops
    mux.HandleFunc("GET /healthz", s.HealthHandler)
    mux.HandleFunc("GET /readyz", s.ReadyHandler)
    mux.HandleFunc("GET /debug/info", s.DebugJSON)
    mux.HandleFunc("GET /openapi.yaml", s.OpenAPIHandler)
    mux.HandleFunc("GET /openapi.json", s.OpenAPIJSONHandler)
    mux.HandleFunc("GET /docs", s.DocsHandler)
    mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    return requestID(recoverer(accessLog(observe(s.rateLimit(mux)))))
}
