package api

import (
    "sync"

    "logistica/internal/model"
)

// EventBroker fans vehicle events out to stream subscribers. A subscription
// to a patent sees that vehicle's events; the empty topic sees all of them.
type EventBroker interface {
    Subscribe(patent string) chan model.VehicleEvent
    Unsubscribe(patent string, ch chan model.VehicleEvent)
    Publish(evt model.VehicleEvent)
}

// Broker is the in-process EventBroker. Slow subscribers miss events rather
// than block publishers.
type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan model.VehicleEvent]struct{} // patent ("" = all) -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan model.VehicleEvent]struct{}{}}
}

func (b *Broker) Subscribe(patent string) chan model.VehicleEvent {
    ch := make(chan model.VehicleEvent, 8)
    b.mu.Lock()
    if b.subs[patent] == nil { b.subs[patent] = map[chan model.VehicleEvent]struct{}{} }
    b.subs[patent][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(patent string, ch chan model.VehicleEvent) {
    b.mu.Lock()
    defer b.mu.Unlock()
    m := b.subs[patent]
    if _, ok := m[ch]; !ok { return }
    delete(m, ch)
    if len(m) == 0 { delete(b.subs, patent) }
    close(ch)
}

func (b *Broker) Publish(evt model.VehicleEvent) {
    b.mu.Lock()
    defer b.mu.Unlock()
    b.fanout(evt.Patent, evt)
    if evt.Patent != "" { b.fanout("", evt) }
}

func (b *Broker) fanout(topic string, evt model.VehicleEvent) {
    for ch := range b.subs[topic] {
        select { case ch <- evt: default: }
    }
}
