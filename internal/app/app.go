package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/minicart/internal/catalog"
	"github.com/utafrali/minicart/internal/config"
	"github.com/utafrali/minicart/internal/event"
	handler "github.com/utafrali/minicart/internal/handler/http"
	"github.com/utafrali/minicart/internal/render"
	"github.com/utafrali/minicart/internal/store"
	"github.com/utafrali/minicart/pkg/health"
	pkgkafka "github.com/utafrali/minicart/pkg/kafka"
	"github.com/utafrali/minicart/pkg/tracing"
)

// Version is reported as the service version on traces.
var Version = "0.1.0"

// Core is the cart store plus whatever it publishes through. Both the HTTP
// server and the terminal shell are built on it.
type Core struct {
	Catalog   *catalog.Catalog
	Store     *store.CartStore
	Formatter render.Formatter
	producer  *pkgkafka.Producer
}

// NewCore builds the catalog, the store and, when Kafka is enabled, the
// cart.updated event producer.
func NewCore(cfg *config.Config, logger *slog.Logger) *Core {
	c := &Core{
		Catalog:   catalog.Default(),
		Formatter: render.NewFormatter(cfg.CurrencySymbol),
	}

	var publisher store.Publisher
	if cfg.KafkaEnabled {
		c.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(c.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	c.Store = store.NewCartStore(c.Catalog, publisher, logger)
	return c
}

// KafkaEnabled reports whether cart updates are published.
func (c *Core) KafkaEnabled() bool {
	return c.producer != nil
}

// Close flushes and closes the event producer, if any.
func (c *Core) Close() error {
	if c.producer == nil {
		return nil
	}
	if err := c.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}

// App wires together all dependencies and runs the HTTP server.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	core           *Core
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(handler.ServiceName, Version))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	core := NewCore(cfg, logger)

	// Health checks. The catalog is critical; Kafka only degrades readiness
	// since publish failures never fail a cart operation.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("catalog", func(context.Context) error {
		if core.Catalog.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})
	if core.KafkaEnabled() {
		healthHandler.RegisterNonCritical("kafka", core.producer.Ping)
	}
	logger.Info("health checks registered", slog.Any("checks", healthHandler.Names()))

	router := handler.NewRouter(handler.RouterConfig{
		Store:       core.Store,
		Formatter:   core.Formatter,
		Health:      healthHandler,
		Logger:      logger,
		CORSOrigins: cfg.CORSAllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		core:           core,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Store returns the cart store served by the app.
func (a *App) Store() *store.CartStore {
	return a.core.Store
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: the HTTP server drains
// in-flight requests, then pending spans are flushed, then the Kafka producer
// is closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.core.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
