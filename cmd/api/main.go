package main

import (
    "context"
    "errors"
    "flag"
    "log/slog"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "golang.org/x/sync/errgroup"

    "logistica/internal/api"
    "logistica/internal/buildinfo"
    "logistica/internal/config"
    "logistica/internal/metrics"
    "logistica/internal/planner"
    "logistica/internal/store"
    "logistica/internal/telemetry"
    "logistica/internal/webhooks"
)

func main() {
    configPath := flag.String("config", "", "path to a YAML config file (default $CONFIG_FILE)")
    flag.Parse()

    cfg, err := config.Load(*configPath)
    if err != nil {
        slog.Error("invalid configuration", "err", err)
        os.Exit(1)
    }
    slog.SetDefault(cfg.NewLogger(os.Stderr))

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()
    if err := run(ctx, cfg); err != nil {
        slog.Error("api exited", "err", err)
        os.Exit(1)
    }
}

func run(ctx context.Context, cfg config.Config) error {
    metrics.RegisterDefault()
    shutdownTracing, err := telemetry.Setup(ctx, os.Stdout, cfg.Tracing.Stdout, buildinfo.Version)
    if err != nil { return err }
    defer func() {
        sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
        defer cancel()
        _ = shutdownTracing(sctx)
    }()

    st, err := store.Open(ctx, cfg.Database.URL, cfg.Database.SQLitePath)
    if err != nil { return err }
    defer st.Close()
    if cfg.SeedFile != "" {
        rep, err := store.SeedFromFile(ctx, st, cfg.SeedFile)
        if err != nil { return err }
        slog.Info("seed applied", "file", cfg.SeedFile, "nodes", rep.Nodes, "routes", rep.Routes, "vehicles", rep.Vehicles)
    }

    var broker api.EventBroker
    if cfg.Redis.URL != "" {
        rb, err := api.NewRedisBroker(ctx, cfg.Redis.URL)
        if err != nil {
            slog.Warn("redis unavailable, using in-memory broker", "err", err)
        } else {
            defer rb.Close()
            broker = rb
        }
    }

    dispatcher := webhooks.NewDispatcher(cfg.Webhooks.URLs, cfg.Webhooks.Secret, cfg.Webhooks.MaxAttempts)
    pl := planner.New(st, planner.Options{MaxDestinations: cfg.Solve.MaxDestinations, MaxNodes: cfg.Solve.MaxNodes, Timeout: cfg.Solve.Timeout})
    srvDeps := api.NewServer(cfg, st, pl, broker, dispatcher)

    srv := &http.Server{
        Addr:              cfg.Addr(),
        Handler:           srvDeps.Handler(),
        ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
        // Streams end when the process is asked to stop.
        BaseContext: func(net.Listener) context.Context { return ctx },
    }

    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() error { return dispatcher.Run(gctx) })
    g.Go(func() error {
        slog.Info("API listening", "addr", srv.Addr, "version", buildinfo.Version, "store", store.Backend(st))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })
    g.Go(func() error {
        <-gctx.Done()
        sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
        defer cancel()
        slog.Info("shutting down")
        return srv.Shutdown(sctx)
    })
    return g.Wait()
}
