package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// drain moves everything queued into pending without starting Run.
func drain(d *Dispatcher) {
	for {
		select {
		case dl := <-d.queue:
			dl.NextAt = d.now()
			d.pending = append(d.pending, dl)
		default:
			return
		}
	}
}

func TestDispatcherSuccessAndSignature(t *testing.T) {
	var gotSig, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	d := NewDispatcher([]string{srv.URL}, "secret", 3)
	d.HTTP = srv.Client()
	id, err := d.Enqueue("vehicle.in_transit", map[string]any{"patent": "AB123CD"})
	if err != nil || id == "" {
		t.Fatalf("enqueue failed: %q %v", id, err)
	}
	drain(d)
	if n := d.processOnce(context.Background()); n != 1 {
		t.Fatalf("want 1 delivered, got %d", n)
	}
	if gotType != "vehicle.in_transit" {
		t.Fatalf("missing event type header: %q", gotType)
	}
	if !VerifyHMAC("secret", gotBody, gotSig) {
		t.Fatalf("signature %q does not verify", gotSig)
	}
	var env map[string]any
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if env["id"] != id || env["type"] != "vehicle.in_transit" {
		t.Fatalf("unexpected envelope: %v", env)
	}
	if d.Pending() != 0 {
		t.Fatalf("nothing should be pending")
	}
}

func TestDispatcherRetriesThenGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(500)
	}))
	defer srv.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDispatcher([]string{srv.URL}, "", 2)
	d.HTTP = srv.Client()
	d.now = func() time.Time { return now }
	_, _ = d.Enqueue("vehicle.available", nil)
	drain(d)

	if n := d.processOnce(context.Background()); n != 0 {
		t.Fatalf("expected failure")
	}
	if d.Pending() != 1 {
		t.Fatalf("expected a retry to be scheduled")
	}
	// Not due yet.
	d.processOnce(context.Background())
	if hits.Load() != 1 {
		t.Fatalf("retry fired before backoff elapsed")
	}
	now = now.Add(nextBackoff(0))
	d.processOnce(context.Background())
	if hits.Load() != 2 || d.Pending() != 0 {
		t.Fatalf("want 2 attempts and nothing pending, got %d / %d", hits.Load(), d.Pending())
	}
}

func TestDispatcherWithoutEndpoints(t *testing.T) {
	d := NewDispatcher(nil, "", 0)
	id, err := d.Enqueue("vehicle.available", nil)
	if err != nil || id != "" || d.Pending() != 0 {
		t.Fatalf("expected no-op, got %q %v %d", id, err, d.Pending())
	}
}

func TestDispatcherRunStops(t *testing.T) {
	d := NewDispatcher(nil, "", 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestNextBackoff(t *testing.T) {
	if nextBackoff(0) != time.Second || nextBackoff(3) != 8*time.Second {
		t.Fatalf("unexpected backoff")
	}
	if nextBackoff(50) != 1024*time.Second {
		t.Fatalf("attempts should be capped")
	}
}

func TestVerifyHMACRejects(t *testing.T) {
	sig := SignHMAC("k", []byte("body"))
	if VerifyHMAC("other", []byte("body"), sig) || VerifyHMAC("k", []byte("body"), "zz") {
		t.Fatalf("verification should fail")
	}
}
