package webhooks

import (
    "bytes"
    "context"
    "fmt"
    "log/slog"
    "net/http"
    "time"

    "logistica/internal/metrics"
)

// Run moves queued deliveries into the pending set and sends whatever is due
// once a second, until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
    ticker := time.NewTicker(1 * time.Second)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            if n := d.Pending(); n > 0 {
                slog.Warn("webhook dispatcher stopping with undelivered events", "pending", n)
            }
            return nil
        case dl := <-d.queue:
            dl.NextAt = d.now()
            d.mu.Lock()
            d.pending = append(d.pending, dl)
            d.mu.Unlock()
            d.processOnce(ctx)
        case <-ticker.C:
            d.processOnce(ctx)
        }
    }
}

// Pending reports deliveries waiting for their first attempt or a retry.
func (d *Dispatcher) Pending() int {
    d.mu.Lock(); defer d.mu.Unlock()
    return len(d.pending) + len(d.queue)
}

// processOnce attempts every due delivery and returns how many succeeded.
func (d *Dispatcher) processOnce(ctx context.Context) int {
    now := d.now()
    d.mu.Lock()
    var due, later []Delivery
    for _, dl := range d.pending {
        if !dl.NextAt.After(now) { due = append(due, dl) } else { later = append(later, dl) }
    }
    d.pending = later
    d.mu.Unlock()

    ok := 0
    for _, dl := range due {
        code, latency, err := d.send(ctx, dl)
        status := "success"
        if err != nil {
            dl.Attempts++
            if dl.Attempts >= d.MaxAttempts {
                status = "failed"
                slog.Error("webhook delivery failed", "event", dl.EventID, "url", dl.URL, "attempts", dl.Attempts, "code", code, "err", err)
            } else {
                status = "retry"
                dl.NextAt = d.now().Add(nextBackoff(dl.Attempts - 1))
                d.mu.Lock()
                d.pending = append(d.pending, dl)
                d.mu.Unlock()
                slog.Debug("webhook delivery will retry", "event", dl.EventID, "url", dl.URL, "attempt", dl.Attempts, "next", dl.NextAt, "err", err)
            }
        } else {
            ok++
        }
        metrics.WebhookDeliveries.WithLabelValues(dl.EventType, status).Inc()
        metrics.WebhookLatency.WithLabelValues(dl.EventType, status).Observe(float64(latency.Milliseconds()))
    }
    return ok
}

func (d *Dispatcher) send(ctx context.Context, dl Delivery) (int, time.Duration, error) {
    ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
    defer cancel()
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, dl.URL, bytes.NewReader(dl.Payload))
    if err != nil { return 0, 0, err }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("X-Event-Type", dl.EventType)
    req.Header.Set("X-Event-Id", dl.EventID)
    if d.Secret != "" {
        req.Header.Set("X-Signature", SignHMAC(d.Secret, dl.Payload))
    }
    start := time.Now()
    resp, err := d.HTTP.Do(req)
    latency := time.Since(start)
    if err != nil { return 0, latency, err }
    _ = resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return resp.StatusCode, latency, fmt.Errorf("unexpected status %d", resp.StatusCode)
    }
    return resp.StatusCode, latency, nil
}

func nextBackoff(attempts int) time.Duration {
    if attempts < 0 { attempts = 0 }
    if attempts > 10 { attempts = 10 }
    base := time.Second * time.Duration(1<<attempts)
    if base > time.Hour { base = time.Hour }
    return base
}
