package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talx-hub/gopher-cashback/internal/api/handlers"
	"github.com/talx-hub/gopher-cashback/internal/cashback"
	"github.com/talx-hub/gopher-cashback/internal/config"
	"github.com/talx-hub/gopher-cashback/internal/dbmanager"
	"github.com/talx-hub/gopher-cashback/internal/erp"
	"github.com/talx-hub/gopher-cashback/internal/model"
	"github.com/talx-hub/gopher-cashback/internal/notify"
	"github.com/talx-hub/gopher-cashback/internal/repo"
	"github.com/talx-hub/gopher-cashback/internal/router"
	"github.com/talx-hub/gopher-cashback/internal/utils/logger"
)

const (
	connectTO  = 5 * time.Second
	shutdownTO = 30 * time.Second
)

type app struct {
	server     *http.Server
	dbManager  *dbmanager.DBManager
	cashback   *cashback.Service
	dispatcher *notify.Dispatcher
	log        *slog.Logger
}

func initService(cfg *config.Config, log *slog.Logger) (*app, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTO)
	defer cancel()
	dbManager := dbmanager.New(cfg.DatabaseURI, log).
		Connect(ctx).
		ApplyMigrations(ctx).
		Ping(ctx)
	if err := dbManager.Error(); err != nil {
		return nil, fmt.Errorf("db connection error: %w", err)
	}

	pool, err := dbManager.GetPool(ctx)
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to get DB pool: %w", err)
	}

	erpClient, err := erp.New(erp.Options{
		BaseURL:       cfg.ERPBaseURL,
		User:          cfg.ERPUser,
		Password:      cfg.ERPPassword,
		Timeout:       cfg.ERPTimeout,
		MaxConcurrent: cfg.ERPMaxConcurrent,
		CacheSize:     cfg.PartnerCacheSize,
	})
	if err != nil {
		dbManager.Close()
		return nil, fmt.Errorf("failed to create ERP client: %w", err)
	}

	paramsRepo := repo.NewParametersRepository(pool, log)
	customerRepo := repo.NewCustomerRepository(pool, log)
	ledgerRepo := repo.NewLedgerRepository(pool, log)
	// each lock holder pins one connection and needs another for its queries
	locker := repo.NewWalletLocker(pool, int(pool.Config().MaxConns)/2, cfg.LockTimeout, log)

	var publisher notify.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		log.LogAttrs(ctx,
			slog.LevelInfo,
			"no kafka brokers configured, balance updates go to the log",
		)
		publisher = notify.NewLogPublisher(ledgerRepo, log)
	}
	dispatcher := notify.NewDispatcher(publisher, cfg.NotifyQueue, log)
	dispatcher.Start(cfg.NotifyWorkers)

	svc := cashback.New(cashback.Deps{
		Parameters: paramsRepo,
		Customers:  customerRepo,
		Gateway:    erpClient,
		Ledger:     ledgerRepo,
		Locker:     locker,
		Notifier:   dispatcher,
	}, cfg.OrderTimeout, log)

	rr := router.New(cfg, log)
	rr.SetRouter(&struct {
		*handlers.OrderHandler
		*handlers.ParametersHandler
		*handlers.WalletHandler
		*handlers.HealthHandler
	}{
		OrderHandler:      handlers.NewOrderHandler(svc, log),
		ParametersHandler: handlers.NewParametersHandler(svc, log),
		WalletHandler:     handlers.NewWalletHandler(svc, log),
		HealthHandler:     handlers.NewHealthHandler(dbManager, log),
	})

	return &app{
		server: &http.Server{
			Addr:              cfg.RunAddr,
			Handler:           rr.GetRouter(),
			ReadHeaderTimeout: connectTO,
		},
		dbManager:  dbManager,
		cashback:   svc,
		dispatcher: dispatcher,
		log:        log,
	}, nil
}

// shutdown stops accepting requests, lets running orders reach the ledger,
// flushes pending notifications and closes the pool, in that order.
func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTO)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to shut down http server",
			slog.Any(model.KeyLoggerError, err),
		)
	}
	a.cashback.Wait()
	if err := a.dispatcher.Close(); err != nil {
		a.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to close notification publisher",
			slog.Any(model.KeyLoggerError, err),
		)
	}
	a.dbManager.Close()
}

func RunServer() {
	bootLog := slog.Default()
	cfg := config.NewBuilder(bootLog).
		FromDotEnv(".env").
		FromEnv().
		FromFlags().
		GetConfig()

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"invalid configuration",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}

	a, err := initService(cfg, log)
	if err != nil {
		log.LogAttrs(context.Background(),
			slog.LevelError,
			"failed to init service",
			slog.Any(model.KeyLoggerError, err),
		)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.LogAttrs(ctx,
			slog.LevelInfo,
			"server started",
			slog.String("addr", cfg.RunAddr),
		)
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.LogAttrs(context.Background(), slog.LevelInfo, "shutting down")
	case err = <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.LogAttrs(context.Background(),
				slog.LevelError,
				"listen and serve error",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}
	a.shutdown()
}
