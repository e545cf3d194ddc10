package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/orders/internal/config"
	"github.com/corray333/backend-labs/orders/internal/dal/clients/customer"
	"github.com/corray333/backend-labs/orders/internal/dal/clients/inventory"
	"github.com/corray333/backend-labs/orders/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/orders/internal/dal/kafka"
	"github.com/corray333/backend-labs/orders/internal/dal/postgres"
	"github.com/corray333/backend-labs/orders/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/orders/internal/dal/redis"
	ordercache "github.com/corray333/backend-labs/orders/internal/dal/repositories/order/cache"
	"github.com/corray333/backend-labs/orders/internal/dal/repositories/order/memory"
	"github.com/corray333/backend-labs/orders/internal/dal/repositories/orderstore"
	outboxrepo "github.com/corray333/backend-labs/orders/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/backend-labs/orders/internal/otel"
	"github.com/corray333/backend-labs/orders/internal/service/services/ordersvc"
	grpctransport "github.com/corray333/backend-labs/orders/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/orders/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/orders/internal/worker/outbox"
)

const shutdownTimeout = 10 * time.Second

// closer is a broker connection owned by the app.
type closer interface {
	Close() error
}

// App represents the application.
type App struct {
	orderSvc       *ordersvc.OrderService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	outboxWorker   *outboxworker.Worker
	broker         closer
	postgresClient *postgres.Client
	redisClient    *redis.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp(cfg *config.Config) *App {
	a := &App{
		otelController: otel.MustInitOtel(cfg.Otel),
	}

	customerClient := customer.MustNewClient(cfg.Clients.CustomerBaseURL, cfg.Clients.Timeout, cfg.Clients.RetryCount)
	inventoryClient := inventory.MustNewClient(cfg.Clients.InventoryBaseURL, cfg.Clients.Timeout, cfg.Clients.RetryCount)

	validator := ordersvc.NewValidator(customerClient, inventoryClient,
		ordersvc.WithStockCheckConcurrency(cfg.Clients.StockCheckConcurrency),
	)

	orderRepo := a.mustInitStorage(cfg)

	a.orderSvc = ordersvc.MustNewOrderService(
		ordersvc.WithRepository(orderRepo),
		ordersvc.WithValidator(validator),
		ordersvc.WithStockReserver(inventoryClient),
	)

	a.httpTransport = httptransport.NewHTTPTransport(cfg.Server.HTTP, a.orderSvc)
	a.httpTransport.RegisterRoutes()

	a.grpcTransport = grpctransport.NewGRPCTransport(cfg.Server.GRPC)

	return a
}

// mustInitStorage picks the order repository and, for Postgres, the outbox
// relay feeding the configured broker.
func (a *App) mustInitStorage(cfg *config.Config) iorderrepo.IOrderRepository {
	if cfg.Storage.Driver != config.StoragePostgres {
		slog.Info("Using in-memory order storage")

		return memory.New()
	}

	a.postgresClient = postgres.MustNewClient(cfg.Postgres)

	store := orderstore.New(a.postgresClient)
	if cfg.Events.Broker != config.BrokerNone {
		store = orderstore.New(a.postgresClient,
			orderstore.WithOutboxEvents(cfg.Events.Queue, cfg.Events.Outbox.MaxRetries),
		)
		a.mustInitOutbox(cfg)
	}

	var repo iorderrepo.IOrderRepository = store

	if cfg.Redis.Enabled {
		a.redisClient = redis.MustNewClient(cfg.Redis)
		repo = ordercache.New(repo, a.redisClient.Redis(), cfg.Redis.TTL)
	}

	return repo
}

func (a *App) mustInitOutbox(cfg *config.Config) {
	switch cfg.Events.Broker {
	case config.BrokerKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		a.broker = producer
		a.outboxWorker = outboxworker.NewWorker(
			outboxrepo.NewOutboxRepository(a.postgresClient.Pool()), producer, cfg.Events.Outbox,
		)
	case config.BrokerRabbitMQ:
		rabbitClient := rabbitmq.MustNewClient(cfg.RabbitMQ.URL())
		a.broker = rabbitClient
		a.outboxWorker = outboxworker.NewWorker(
			outboxrepo.NewOutboxRepository(a.postgresClient.Pool()), rabbitClient, cfg.Events.Outbox,
		)
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := a.httpTransport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := a.grpcTransport.Run(); err != nil {
			slog.Error("gRPC server error", "error", err)
		}
	}()

	if a.outboxWorker != nil {
		go func() {
			slog.Info("Starting outbox worker")
			a.outboxWorker.Start(ctx)
		}()
	}

	<-stop
	slog.Info("Shutdown signal received")
	cancel()

	a.gracefulShutdown()
}

// gracefulShutdown stops intake first, then the relay, then the connections
// they depend on.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpTransport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.grpcTransport.Shutdown(ctx); err != nil {
		slog.Error("gRPC server shutdown error", "error", err)
	} else {
		slog.Info("gRPC server stopped gracefully")
	}

	if a.outboxWorker != nil {
		a.outboxWorker.Stop()
		slog.Info("Outbox worker stopped gracefully")
	}

	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			slog.Error("Broker connection close error", "error", err)
		} else {
			slog.Info("Broker connection closed gracefully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			slog.Error("Redis connection close error", "error", err)
		} else {
			slog.Info("Redis connection closed gracefully")
		}
	}

	if a.postgresClient != nil {
		a.postgresClient.Close()
		slog.Info("Database connection closed gracefully")
	}

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
