package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/order-intake/internal/config"
	"github.com/joao-fontenele/order-intake/internal/intake"
	"github.com/joao-fontenele/order-intake/internal/messaging"
	"github.com/joao-fontenele/order-intake/internal/store/postgres"
	"github.com/joao-fontenele/order-intake/internal/store/postgrest"
	"github.com/joao-fontenele/order-intake/internal/telemetry"
)

const (
	serviceName    = "intake"
	serviceVersion = "0.1.0"
)

func main() {
	cfg, err := config.Load("8080")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx := context.Background()

	telemetry.InstallPropagator()
	if cfg.Tracing.Enabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(ctx) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	store, closeStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to initialize store", "error", err, "driver", cfg.Store.Driver)
		os.Exit(1)
	}
	defer closeStore()

	var publisher intake.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	service, err := intake.NewService(store, publisher, logger)
	if err != nil {
		logger.Error("failed to create intake service", "error", err)
		os.Exit(1)
	}

	handler, err := intake.NewHandler(service, logger)
	if err != nil {
		logger.Error("failed to create intake handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(handler.HandleSubmit))
	mux.HandleFunc("POST /{$}", telemetry.WithHTTPRoute(handler.HandleSubmit))
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      telemetry.Middleware(mux, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting intake service", "port", cfg.Port, "store", cfg.Store.Driver, "events", publisher != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func newStore(ctx context.Context, cfg config.StoreConfig) (intake.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := telemetry.OpenPostgres(ctx, cfg.PostgresURL, cfg.PostgresSchema)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewOrderRepository(db), func() { _ = db.Close() }, nil
	default:
		client := postgrest.NewClient(cfg.URL, cfg.ServiceKey, telemetry.NewHTTPClient(cfg.Timeout))
		return postgrest.NewStore(client), func() {}, nil
	}
}
