package api

import (
    "bufio"
    "context"
    "errors"
    "log/slog"
    "net"
    "net/http"
    "runtime/debug"
    "strconv"
    "time"

    "github.com/google/uuid"

    "logistica/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

type ctxKeyRequestID struct{}

// RequestIDFrom returns the id assigned by the requestID middleware.
func RequestIDFrom(ctx context.Context) string {
    id, _ := ctx.Value(ctxKeyRequestID{}).(string)
    return id
}

// requestID keeps a caller supplied X-Request-Id (when it is a UUID) or assigns one.
func requestID(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        id := r.Header.Get(requestIDHeader)
        if _, err := uuid.Parse(id); err != nil {
            id = uuid.NewString()
        }
        w.Header().Set(requestIDHeader, id)
        next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
    })
}

func recoverer(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if v := recover(); v != nil {
                if v == http.ErrAbortHandler { panic(v) }
                slog.ErrorContext(r.Context(), "handler panic", "panic", v, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "stack", string(debug.Stack()))
                writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "", r.URL.Path)
            }
        }()
        next.ServeHTTP(w, r)
    })
}

// rateLimit applies one token bucket to the whole API. Health and metrics
// endpoints are exempt.
func (s *Server) rateLimit(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if s.limiter == nil || exemptFromLimit(r.URL.Path) {
            next.ServeHTTP(w, r)
            return
        }
        if !s.limiter.Allow() {
            metrics.RateLimited.Inc()
            w.Header().Set("Retry-After", "1")
            writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded", r.URL.Path)
            return
        }
        next.ServeHTTP(w, r)
    })
}

func exemptFromLimit(path string) bool {
    switch path {
    case "/healthz", "/readyz", "/metrics":
        return true
    }
    return false
}

// statusRecorder captures the response status. It forwards Flush and Hijack
// so event streams and websockets work behind the middleware.
type statusRecorder struct {
    http.ResponseWriter
    status int
    bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
    if r.status == 0 { r.status = code }
    r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
    if r.status == 0 { r.status = http.StatusOK }
    n, err := r.ResponseWriter.Write(b)
    r.bytes += n
    return n, err
}

func (r *statusRecorder) Flush() {
    if f, ok := r.ResponseWriter.(http.Flusher); ok { f.Flush() }
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    h, ok := r.ResponseWriter.(http.Hijacker)
    if !ok { return nil, nil, errors.New("hijack not supported") }
    if r.status == 0 { r.status = http.StatusSwitchingProtocols }
    return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *statusRecorder) code() int {
    if r.status == 0 { return http.StatusOK }
    return r.status
}

// observe records Prometheus request metrics labelled by the matched route pattern.
func observe(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        rec, ok := w.(*statusRecorder)
        if !ok {
            rec = &statusRecorder{ResponseWriter: w}
        }
        next.ServeHTTP(rec, r)
        path := r.Pattern
        if path == "" { path = "unmatched" }
        status := strconv.Itoa(rec.code())
        metrics.HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
    })
}

func accessLog(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w}
        next.ServeHTTP(rec, r)
        slog.InfoContext(r.Context(), "http request",
            "method", r.Method,
            "path", r.URL.Path,
            "status", rec.code(),
            "bytes", rec.bytes,
            "duration", time.Since(start),
            "remote", r.RemoteAddr,
            "request_id", RequestIDFrom(r.Context()),
        )
    })
}
