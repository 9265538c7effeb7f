package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ordercash/ordercash-backend/api/routes"
	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/internal/customers"
	"github.com/ordercash/ordercash-backend/internal/expenses"
	"github.com/ordercash/ordercash-backend/internal/orders"
	"github.com/ordercash/ordercash-backend/internal/paymentmethods"
	"github.com/ordercash/ordercash-backend/internal/payments"
	"github.com/ordercash/ordercash-backend/internal/sequence"
	"github.com/ordercash/ordercash-backend/internal/suppliers"
	"github.com/ordercash/ordercash-backend/internal/tenants"
	"github.com/ordercash/ordercash-backend/pkg/authz"
	"github.com/ordercash/ordercash-backend/pkg/config"
	"github.com/ordercash/ordercash-backend/pkg/db"
	"github.com/ordercash/ordercash-backend/pkg/logger"
	"github.com/ordercash/ordercash-backend/pkg/metrics"
	"github.com/ordercash/ordercash-backend/pkg/migrate"
	"github.com/ordercash/ordercash-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svcs, err := buildServices(cfg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, authz.NewCapabilityChecker(), svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Services, error) {
	conn := dbClient.DB()

	accountsRepo := accounts.NewRepository(conn)
	accountsSvc, err := accounts.NewService(accountsRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	ledger, err := accounts.NewLedger(accountsRepo, metrics.NewLedgerMetrics(registry))
	if err != nil {
		return routes.Services{}, err
	}

	methodsSvc, err := paymentmethods.NewService(
		paymentmethods.NewRepository(conn),
		accountsSvc,
		redisClient,
		cfg.Ledger.PaymentMethodCacheTTL,
	)
	if err != nil {
		return routes.Services{}, err
	}

	tenantsSvc, err := tenants.NewService(tenants.NewRepository(conn), methodsSvc)
	if err != nil {
		return routes.Services{}, err
	}

	customersSvc, err := customers.NewService(customers.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	expensesRepo := expenses.NewRepository(conn)
	seq := sequence.NewAllocator()

	suppliersSvc, err := suppliers.NewService(suppliers.NewRepository(conn), expensesRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	expensesSvc, err := expenses.NewService(expensesRepo, ledger, dbClient, seq, cfg.Ledger.SequenceRetryAttempts)
	if err != nil {
		return routes.Services{}, err
	}

	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, seq, metrics.NewOrderMetrics(registry), cfg.Ledger.SequenceRetryAttempts)
	if err != nil {
		return routes.Services{}, err
	}

	paymentsSvc, err := payments.NewService(payments.NewRepository(conn), ordersRepo, ledger, dbClient, metrics.NewPaymentMetrics(registry))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Tenants:        tenantsSvc,
		Customers:      customersSvc,
		Suppliers:      suppliersSvc,
		PaymentMethods: methodsSvc,
		Accounts:       accountsSvc,
		Orders:         ordersSvc,
		Payments:       paymentsSvc,
		Expenses:       expensesSvc,
	}, nil
}
