package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjod/game-hardware-store/internal/cache"
	"github.com/fjod/game-hardware-store/internal/config"
	storegrpc "github.com/fjod/game-hardware-store/internal/grpc"
	storehttp "github.com/fjod/game-hardware-store/internal/http"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/logger"
	"github.com/fjod/game-hardware-store/internal/publisher"
	"github.com/fjod/game-hardware-store/internal/repository"
	"github.com/fjod/game-hardware-store/internal/service"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("storefront", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped with error", zap.Error(err))
	}
	log.Info("storefront stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	repo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations completed", zap.String("driver", string(repo.Dialect())))

	orderCache, closeCache := openCache(cfg, log)
	defer closeCache()

	repos := repo.Repos()
	checkout := service.NewCheckoutService(repo, orderCache, log)
	orders := service.NewOrderService(repos.Orders, orderCache, log)
	svc := storehttp.Services{
		Carts:    service.NewCartService(repo, log),
		Checkout: checkout,
		Orders:   orders,
		Catalog:  service.NewCatalogService(repos.Catalog, cfg.LowStockThreshold, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repos.Outbox,
			publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...),
			publisher.Options{Interval: cfg.OutboxInterval, BatchSize: cfg.OutboxBatchSize},
			log)
		go poller.Run(ctx)
		log.Info("outbox poller started", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	router := storehttp.NewRouter(svc, identity.HeaderProvider{}, log, cfg.RequestTimeout)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(router, "storefront"),
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer, health := storegrpc.NewGRPCServer(storegrpc.NewServer(checkout, orders), log)

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down storefront")
	case serveErr = <-errCh:
	}

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	stop()

	return serveErr
}

func openRepository(cfg *config.Config) (*repository.Repository, error) {
	if repository.Dialect(cfg.DBDriver) == repository.DialectPostgres {
		return repository.NewPostgresRepository(&cfg.Postgres)
	}
	return repository.NewSQLiteRepository(cfg.SQLitePath)
}

func openCache(cfg *config.Config, log *zap.Logger) (cache.OrderCache, func()) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, order cache disabled")
		return cache.NoopCache{}, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn("redis unreachable, reads fall through to the database",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return cache.NewRedisCache(client, cfg.OrderCacheTTL), func() { _ = client.Close() }
}
