package api

import (
    "context"
    "encoding/json"
    "fmt"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "logistica/internal/metrics"
    "logistica/internal/model"
)

var sseHeartbeat = 15 * time.Second

func (s *Server) publish(ctx context.Context, evt model.VehicleEvent) {
    metrics.VehicleEvents.WithLabelValues(evt.Type).Inc()
    s.Broker.Publish(evt)
    if s.Notifier == nil { return }
    if _, err := s.Notifier.Enqueue(evt.Type, evt); err != nil {
        slog.WarnContext(ctx, "webhook enqueue failed", "type", evt.Type, "patent", evt.Patent, "err", err)
    }
}

// VehicleEventsStreamHandler handles GET /api/v1/vehicules/events/stream as
// Server-Sent Events. ?patent= narrows the stream to one vehicle.
func (s *Server) VehicleEventsStreamHandler(w http.ResponseWriter, r *http.Request) {
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    patent := strings.TrimSpace(r.URL.Query().Get("patent"))
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")

    ch := s.Broker.Subscribe(patent)
    defer s.Broker.Unsubscribe(patent, ch)

    heartbeat := func() {
        fmt.Fprintf(w, "event: heartbeat\n")
        fmt.Fprintf(w, "data: {\"patent\":%q,\"ts\":%q}\n\n", patent, s.now().UTC().Format(time.RFC3339))
        flusher.Flush()
    }
    heartbeat()
    ticker := time.NewTicker(sseHeartbeat)
    defer ticker.Stop()
    for {
        select {
        case <-r.Context().Done():
            return
        case evt, ok := <-ch:
            if !ok { return }
            b, _ := json.Marshal(evt)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", b)
            flusher.Flush()
        case <-ticker.C:
            heartbeat()
        }
    }
}
