package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/ctxlog"
	"github.com/specialistvlad/stagegrid/internal/engine"
	"github.com/specialistvlad/stagegrid/internal/loader"
	"github.com/specialistvlad/stagegrid/internal/monitor"
	"github.com/specialistvlad/stagegrid/internal/pool"
	"github.com/specialistvlad/stagegrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	loader     config.Loader
	metrics    *prometheus.Registry
	pool       *pool.Pool
	engine     *engine.Engine
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, registry, metrics
// registry and worker pool. Without modules the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.New(modules...)
	logger.Debug("Task modules registered.", "count", len(modules), "refs", reg.Refs())

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mon := monitor.Multi(monitor.NewLog(logger), monitor.NewPrometheus(metrics))

	p := pool.New(ctx,
		pool.WithWorkers(cfg.Workers),
		pool.WithQueueSize(cfg.QueueSize),
		pool.WithQueueObserver(mon.TaskQueued),
	)
	logger.Debug("Worker pool started.", "workers", p.Workers(), "queue", p.QueueSize())

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   loader.New(),
		metrics:  metrics,
		pool:     p,
		engine:   engine.New(ctx, reg, engine.WithPool(p), engine.WithMonitor(mon)),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the registry the task metrics are collected in.
func (a *App) Metrics() *prometheus.Registry {
	return a.metrics
}

// Close stops the health check server and waits for the worker pool to drain.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.closeHealthCheckServer(), a.pool.Shutdown(ctx))
}
