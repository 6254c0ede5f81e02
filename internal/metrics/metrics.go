package metrics

import (
    "sync"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API and the CLI.
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, route pattern and status.
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )
    // RateLimited counts requests rejected with 429.
    RateLimited = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "http_rate_limited_total", Help: "Requests rejected by the rate limiter."},
    )

    // SolveDuration records wall time of exhaustive searches, including failed ones.
    SolveDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "tsp_solve_duration_seconds", Help: "Shortest-route search duration in seconds.", Buckets: []float64{.0001, .001, .01, .05, .1, .5, 1, 2.5, 5, 10, 30}},
        []string{"outcome"},
    )
    // PermutationsEvaluated accumulates scored orderings across all searches.
    PermutationsEvaluated = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "tsp_permutations_evaluated_total", Help: "Orderings scored by the shortest-route search."},
    )
    // Solves counts searches by outcome: ok, invalid, timeout, canceled, error.
    Solves = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "tsp_solves_total", Help: "Shortest-route searches by outcome."},
        []string{"outcome"},
    )
    Destinations = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "tsp_destinations", Help: "Destinations per shortest-route request.", Buckets: prometheus.LinearBuckets(0, 1, 13)},
    )

    // VehicleEvents counts availability changes published to subscribers.
    VehicleEvents = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "vehicle_events_total", Help: "Vehicle availability events by type."},
        []string{"type"},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
    // WebhookLatency tracks webhook delivery latencies in milliseconds
    WebhookLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
        []string{"event_type", "status"},
    )
)

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests, HTTPDuration, RateLimited)
        Registry.MustRegister(SolveDuration, PermutationsEvaluated, Solves, Destinations)
        Registry.MustRegister(VehicleEvents)
        Registry.MustRegister(WebhookDeliveries, WebhookLatency)
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
