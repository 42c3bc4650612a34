package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evoshop/storefront/internal/dal/cache"
	"github.com/evoshop/storefront/internal/dal/postgres"
	"github.com/evoshop/storefront/internal/dal/rabbitmq"
	cartitemrepo "github.com/evoshop/storefront/internal/dal/repositories/cartitem/postgres"
	orderrepo "github.com/evoshop/storefront/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/evoshop/storefront/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/evoshop/storefront/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/evoshop/storefront/internal/dal/repositories/product/postgres"
	"github.com/evoshop/storefront/internal/otel"
	"github.com/evoshop/storefront/internal/service/services/cartsvc"
	"github.com/evoshop/storefront/internal/service/services/catalogsvc"
	"github.com/evoshop/storefront/internal/service/services/checkoutsvc"
	httptransport "github.com/evoshop/storefront/internal/transport/http"
	"github.com/evoshop/storefront/internal/worker/outbox"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cartSvc        *cartsvc.CartService
	checkoutSvc    *checkoutsvc.CheckoutService
	catalogSvc     *catalogsvc.CatalogService
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	redisClient := cache.MustNewRedisClient()
	rabbitClient := rabbitmq.MustNewClient()

	exchangeName := viper.GetString("rabbitmq.order_events_exchange")
	if err := rabbitClient.DeclareExchange(rabbitmq.DeclareExchangeConfig{
		Name:    exchangeName,
		Kind:    "topic",
		Durable: true,
	}); err != nil {
		panic(err)
	}

	cartItemRepo := cartitemrepo.NewPostgresCartItemRepository(postgresClient.Pool())
	orderRepo := orderrepo.NewPostgresOrderRepository(postgresClient.Pool())
	orderItemRepo := orderitemrepo.NewPostgresOrderItemRepository(postgresClient.Pool())
	productRepo := productrepo.NewPostgresProductRepository(postgresClient.Pool())
	outboxRepo := outboxrepo.NewOutboxRepository(postgresClient.Pool())

	cartSvc := cartsvc.MustNewCartService(
		cartsvc.WithCartItemRepository(cartItemRepo),
	)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithOrderRepository(orderRepo),
		checkoutsvc.WithOrderItemRepository(orderItemRepo),
		checkoutsvc.WithCartItemRepository(cartItemRepo),
		checkoutsvc.WithOutboxRepository(outboxRepo, exchangeName),
	)

	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithProductRepository(productRepo),
		catalogsvc.WithProductCache(cache.NewRedisCache(redisClient)),
	)

	transport := httptransport.NewHTTPTransport(cartSvc, checkoutSvc, catalogSvc)
	transport.RegisterRoutes()

	outboxWorker := outbox.NewWorker(outboxRepo, rabbitClient)

	return &App{
		cartSvc:        cartSvc,
		checkoutSvc:    checkoutSvc,
		catalogSvc:     catalogSvc,
		transport:      transport,
		outboxWorker:   outboxWorker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
