package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/corray333/backend-labs/storefront/internal/config"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ideliveryfeerepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iproductrepo"
	amqpnotifier "github.com/corray333/backend-labs/storefront/internal/dal/notifier/amqp"
	kafkanotifier "github.com/corray333/backend-labs/storefront/internal/dal/notifier/kafka"
	"github.com/corray333/backend-labs/storefront/internal/dal/notifier/webhook"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/rabbitmq"
	deliveryfeememory "github.com/corray333/backend-labs/storefront/internal/dal/repositories/deliveryfee/memory"
	deliveryfeepostgres "github.com/corray333/backend-labs/storefront/internal/dal/repositories/deliveryfee/postgres"
	ordermemory "github.com/corray333/backend-labs/storefront/internal/dal/repositories/order/memory"
	orderpostgres "github.com/corray333/backend-labs/storefront/internal/dal/repositories/order/postgres"
	outboxpostgres "github.com/corray333/backend-labs/storefront/internal/dal/repositories/outbox/postgres"
	productmemory "github.com/corray333/backend-labs/storefront/internal/dal/repositories/product/memory"
	productpostgres "github.com/corray333/backend-labs/storefront/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/storefront/internal/otel"
	"github.com/corray333/backend-labs/storefront/internal/service/checkout"
	"github.com/corray333/backend-labs/storefront/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/storefront/internal/service/services/journalsvc"
	"github.com/corray333/backend-labs/storefront/internal/service/services/storesvc"
	grpctransport "github.com/corray333/backend-labs/storefront/internal/transport/grpc"
	httptransport "github.com/corray333/backend-labs/storefront/internal/transport/http"
	"github.com/corray333/backend-labs/storefront/internal/worker/janitor"
	outboxworker "github.com/corray333/backend-labs/storefront/internal/worker/outbox"
	"github.com/corray333/backend-labs/storefront/pkg/metrics"
)

// App represents the application.
type App struct {
	cfg *config.Config

	checkoutSvc    *checkoutsvc.CheckoutService
	httpTransport  *httptransport.HTTPTransport
	grpcTransport  *grpctransport.GRPCTransport
	janitor        *janitor.Janitor
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	rabbitMqClient *rabbitmq.Client
	kafkaWriter    *kafkago.Writer
	otelController *otel.OtelController
}

type storage struct {
	products iproductrepo.IProductRepository
	fees     ideliveryfeerepo.IDeliveryFeeRepository
	orders   iorderrepo.IOrderRepository
}

// MustNewApp wires the storefront from cfg.
func MustNewApp(ctx context.Context, cfg *config.Config) *App {
	a := &App{cfg: cfg}
	a.otelController = otel.MustInitOtel(cfg.Tracing)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := a.mustInitStorage(ctx)

	if cfg.Notification.Channel == config.ChannelAMQP || cfg.Outbox.Enabled {
		a.rabbitMqClient = rabbitmq.MustNewClient(cfg.RabbitMQ.URL)
		for _, queue := range []string{cfg.RabbitMQ.NotificationQueue, cfg.RabbitMQ.OrderEventsQueue} {
			if queue == "" {
				continue
			}
			if _, err := a.rabbitMqClient.DeclareQueue(rabbitmq.DeclareQueueConfig{Name: queue, Durable: true}); err != nil {
				panic(fmt.Sprintf("failed to declare queue %s: %v", queue, err))
			}
		}
	}

	outboxQueue := ""
	if cfg.Outbox.Enabled {
		outboxQueue = cfg.RabbitMQ.OrderEventsQueue

		outboxRepository := outboxpostgres.NewOutboxRepository(a.postgresClient.Pool())
		a.outboxWorker = outboxworker.NewWorker(outboxRepository, a.rabbitMqClient, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	}
	journal := journalsvc.MustNewJournalService(
		journalsvc.WithOrderRepository(store.orders),
		journalsvc.WithPostgresClient(a.postgresClient),
		journalsvc.WithOutbox(outboxQueue, cfg.Outbox.MaxAttempts),
	)

	a.checkoutSvc = checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithCatalog(store.products),
		checkoutsvc.WithFeeLookup(store.fees),
		checkoutsvc.WithDispatcher(a.mustInitDispatcher()),
		checkoutsvc.WithJournal(journal),
		checkoutsvc.WithMachineOptions(
			checkout.WithDispatchTimeout(cfg.Checkout.DispatchTimeout),
			checkout.WithObserver(metrics.NewCheckoutMetrics(registry)),
		),
	)
	a.janitor = janitor.New(a.checkoutSvc, cfg.Checkout.SessionTTL, cfg.Checkout.JanitorInterval)

	storeSvc := storesvc.MustNewStoreService(
		storesvc.WithProductRepository(store.products),
		storesvc.WithDeliveryFeeRepository(store.fees),
		storesvc.WithJournal(journal),
	)

	a.httpTransport = httptransport.NewHTTPTransport(cfg, a.checkoutSvc, storeSvc,
		httptransport.WithMetrics(metrics.Handler(registry), metrics.NewServerMetrics(registry, "http").Middleware),
	)
	a.httpTransport.RegisterRoutes()

	grpcTransport, err := grpctransport.NewGRPCTransport(cfg.Server.GRPC)
	if err != nil {
		panic(err)
	}
	a.grpcTransport = grpcTransport

	return a
}

func (a *App) mustInitStorage(ctx context.Context) storage {
	if a.cfg.Storage.Driver == config.StoragePostgres {
		a.postgresClient = postgres.MustNewClient(ctx, a.cfg.Postgres.DSN())
		pool := a.postgresClient.Pool()

		return storage{
			products: productpostgres.NewPostgresProductRepository(pool),
			fees:     deliveryfeepostgres.NewPostgresDeliveryFeeRepository(pool),
			orders:   orderpostgres.NewPostgresOrderRepository(pool),
		}
	}

	slog.Warn("Using in-memory storage, orders are lost on restart")
	now := time.Now()

	return storage{
		products: productmemory.NewMemoryProductRepository(productmemory.DefaultCatalog(now)...),
		fees:     deliveryfeememory.NewMemoryDeliveryFeeRepository(deliveryfeememory.DefaultFees(now)...),
		orders:   ordermemory.NewMemoryOrderRepository(),
	}
}

func (a *App) mustInitDispatcher() checkout.Dispatcher {
	subject := a.cfg.Notification.Webhook.Subject

	switch a.cfg.Notification.Channel {
	case config.ChannelAMQP:
		return amqpnotifier.NewDispatcher(a.rabbitMqClient, a.cfg.RabbitMQ.NotificationQueue, subject)
	case config.ChannelKafka:
		a.kafkaWriter = kafkanotifier.NewWriter(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)

		return kafkanotifier.NewDispatcher(a.kafkaWriter, subject)
	default:
		return webhook.NewDispatcher(a.cfg.Notification.Webhook.URL, subject)
	}
}

// Run starts the application and blocks until an interrupt signal or a
// component failure, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.httpTransport.Run(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		if err := a.grpcTransport.Run(); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}

		return nil
	})
	a.grpcTransport.SetServing(true)

	g.Go(func() error {
		slog.Info("Starting checkout janitor", "ttl", a.cfg.Checkout.SessionTTL)
		a.janitor.Run(gctx)

		return nil
	})
	if a.outboxWorker != nil {
		g.Go(func() error {
			a.outboxWorker.Start(gctx)

			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")
		a.gracefulShutdown()

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// gracefulShutdown stops intake first, then background workers, then the
// connections they were using.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()

	a.grpcTransport.SetServing(false)

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

	if a.kafkaWriter != nil {
		if err := a.kafkaWriter.Close(); err != nil {
			slog.Error("Kafka writer close error", "error", err)
		} else {
			slog.Info("Kafka writer closed gracefully")
		}
	}

	if a.rabbitMqClient != nil {
		if err := a.rabbitMqClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		} else {
			slog.Info("RabbitMQ connection closed gracefully")
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
