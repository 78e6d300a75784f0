package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/oja-market/internal/app"
	"github.com/nikolayk812/oja-market/internal/cartstore"
	"github.com/nikolayk812/oja-market/internal/catalog"
	"github.com/nikolayk812/oja-market/internal/config"
	"github.com/nikolayk812/oja-market/internal/httpapi"
	"github.com/nikolayk812/oja-market/internal/identity"
	"github.com/nikolayk812/oja-market/internal/logger"
	"github.com/nikolayk812/oja-market/internal/migrations"
	"github.com/nikolayk812/oja-market/internal/money"
	"github.com/nikolayk812/oja-market/internal/orderclient"
	"github.com/nikolayk812/oja-market/internal/orderservice"
	"github.com/nikolayk812/oja-market/internal/port"
	"github.com/nikolayk812/oja-market/internal/repository"
	"github.com/nikolayk812/oja-market/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	configPath := flag.String("config", os.Getenv("OJA_CONFIG"), "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	log, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("logger.New: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, closeDocs, err := openDocuments(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	kv, closeKV, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeKV()

	formatter, err := money.NewFormatter(cfg.Currency.Code, cfg.Currency.Symbol, cfg.Currency.Locale)
	if err != nil {
		return fmt.Errorf("money.NewFormatter: %w", err)
	}

	totals := cfg.Pricing.TotalsConfig()
	idp := identity.NewMemory(identity.WithUserDocuments(docs), identity.WithLogger(log))

	if cfg.OrderService.Embedded {
		stopOrders, err := serveOrders(cfg.OrderService.Addr, orderservice.New(docs, idp, totals, log), log)
		if err != nil {
			return err
		}
		defer stopOrders()
	}

	conn, err := grpc.NewClient(cfg.OrderService.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("grpc.NewClient: %w", err)
	}
	defer conn.Close()

	a := app.New(ctx, app.Deps{
		Identity:  idp,
		Cart:      cartstore.New(kv, log, cartstore.WithKey(cfg.Storage.Key)),
		Catalog:   catalog.NewService(docs, log),
		Orders:    orderclient.WithBreaker(orderclient.New(conn), cfg.OrderService.BreakerConfig(), log),
		Formatter: formatter,
		Totals:    totals,
		Checkout:  cfg.Checkout.OrchestratorConfig(),
		Logger:    log,
	})
	defer a.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      otelhttp.NewHandler(httpapi.NewRouter(a, log), "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}

func openDocuments(ctx context.Context, cfg config.Postgres, log zerolog.Logger) (port.TxDocumentStore, func(), error) {
	if cfg.DSN == "" {
		log.Warn().Msg("postgres.dsn is empty, documents are kept in memory")
		return repository.NewMemory(), func() {}, nil
	}

	if cfg.Migrate {
		if err := migrations.Up(cfg.DSN); err != nil {
			return nil, nil, fmt.Errorf("migrations.Up: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	return repository.NewDocuments(pool), pool.Close, nil
}

func openStorage(cfg config.Config) (port.KeyValueStorage, func(), error) {
	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return storage.NewRedis(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
	case config.StorageMemory:
		return storage.NewMemory(), func() {}, nil
	default:
		kv, err := storage.NewFile(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("storage.NewFile: %w", err)
		}
		return kv, func() {}, nil
	}
}

func serveOrders(addr string, svc *orderservice.Service, log zerolog.Logger) (func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen: %w", err)
	}

	server := grpc.NewServer()
	orderservice.Register(server, svc)

	go func() {
		log.Info().Str("addr", addr).Msg("order service listening")
		if err := server.Serve(lis); err != nil {
			log.Error().Err(err).Msg("order service stopped")
		}
	}()

	return server.GracefulStop, nil
}
