package webhooks

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"logistica/internal/metrics"
)

// Delivery is one event bound for one endpoint.
type Delivery struct {
	EventID   string
	EventType string
	URL       string
	Payload   []byte
	Attempts  int
	NextAt    time.Time
}

// Dispatcher fans vehicle events out to the configured endpoints. Enqueue is
// safe for concurrent use; Run drains the queue and retries failures.
type Dispatcher struct {
	URLs        []string
	Secret      string
	HTTP        *http.Client
	MaxAttempts int

	queue   chan Delivery
	mu      sync.Mutex
	pending []Delivery
	now     func() time.Time
}

const queueSize = 256

func NewDispatcher(urls []string, secret string, maxAttempts int) *Dispatcher {
	if maxAttempts <= 0 { maxAttempts = 5 }
	return &Dispatcher{
		URLs:        urls,
		Secret:      secret,
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		MaxAttempts: maxAttempts,
		queue:       make(chan Delivery, queueSize),
		now:         time.Now,
	}
}

// Enqueue wraps data in an {id,type,ts,data} envelope and queues it for every
// endpoint. It never blocks: when the queue is full the delivery is dropped.
// The returned id is empty when no endpoints are configured.
func (d *Dispatcher) Enqueue(eventType string, data any) (string, error) {
	if len(d.URLs) == 0 { return "", nil }
	id := "evt_" + uuid.NewString()
	body, err := json.Marshal(map[string]any{
		"id":   id,
		"type": eventType,
		"ts":   d.now().UTC().Format(time.RFC3339),
		"data": data,
	})
	if err != nil { return "", err }
	for _, u := range d.URLs {
		select {
		case d.queue <- Delivery{EventID: id, EventType: eventType, URL: u, Payload: body}:
		default:
			metrics.WebhookDeliveries.WithLabelValues(eventType, "dropped").Inc()
			slog.Warn("webhook queue full, dropping delivery", "event", id, "type", eventType, "url", u)
		}
	}
	return id, nil
}
