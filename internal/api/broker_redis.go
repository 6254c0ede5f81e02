package api

import (
    "context"
    "encoding/json"
    "log/slog"
    "sync"
    "time"

    redis "github.com/redis/go-redis/v9"

    "logistica/internal/model"
)

// RedisBroker implements EventBroker over Redis Pub/Sub so that every API
// replica streams every vehicle event.
type RedisBroker struct {
    rdb *redis.Client

    mu   sync.Mutex
    subs map[chan model.VehicleEvent]*redis.PubSub
}

func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
    opt, err := redis.ParseURL(url)
    if err != nil { return nil, err }
    rdb := redis.NewClient(opt)
    if err := rdb.Ping(ctx).Err(); err != nil {
        _ = rdb.Close()
        return nil, err
    }
    return &RedisBroker{rdb: rdb, subs: map[chan model.VehicleEvent]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(patent string) chan model.VehicleEvent {
    ch := make(chan model.VehicleEvent, 16)
    ctx := context.Background()
    ps := b.rdb.Subscribe(ctx, b.chanName(patent))
    // initial consume to ensure subscription
    if _, err := ps.Receive(ctx); err != nil {
        slog.Warn("redis subscribe failed", "channel", b.chanName(patent), "err", err)
    }
    b.mu.Lock()
    b.subs[ch] = ps
    b.mu.Unlock()
    go func() {
        defer close(ch)
        for msg := range ps.Channel() {
            var evt model.VehicleEvent
            if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
                select { case ch <- evt: default: }
            }
        }
    }()
    return ch
}

// Unsubscribe closes the Pub/Sub connection; the forwarding goroutine then
// closes ch.
func (b *RedisBroker) Unsubscribe(patent string, ch chan model.VehicleEvent) {
    b.mu.Lock()
    ps, ok := b.subs[ch]
    delete(b.subs, ch)
    b.mu.Unlock()
    if ok { _ = ps.Close() }
}

func (b *RedisBroker) Publish(evt model.VehicleEvent) {
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    data, err := json.Marshal(evt)
    if err != nil { return }
    for _, topic := range []string{evt.Patent, ""} {
        if err := b.rdb.Publish(ctx, b.chanName(topic), data).Err(); err != nil {
            slog.Warn("redis publish failed", "channel", b.chanName(topic), "err", err)
        }
        if evt.Patent == "" { break }
    }
}

func (b *RedisBroker) Ping(ctx context.Context) error { return b.rdb.Ping(ctx).Err() }

func (b *RedisBroker) Close() error { return b.rdb.Close() }

func (b *RedisBroker) chanName(patent string) string {
    if patent == "" { return "vehicles:events" }
    return "vehicle:" + patent + ":events"
}
