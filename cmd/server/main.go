package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/config"
	"github.com/shoeshop/pos-backend/internal/repository/mongodb"
	"github.com/shoeshop/pos-backend/internal/repository/sheets"
	"github.com/shoeshop/pos-backend/internal/scheduler"
	"github.com/shoeshop/pos-backend/internal/server/handlers"
	"github.com/shoeshop/pos-backend/internal/server/router"
	inventorysvc "github.com/shoeshop/pos-backend/internal/service/inventory"
	reportingsvc "github.com/shoeshop/pos-backend/internal/service/reporting"
	salessvc "github.com/shoeshop/pos-backend/internal/service/sales"
	"github.com/shoeshop/pos-backend/pkg/clients/webhook"
	"github.com/shoeshop/pos-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var sheetsRepo sheets.Repository
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
	}

	var notifier *webhook.Client
	if cfg.Webhook.URL != "" {
		notifier = webhook.NewClient(cfg.Webhook)
		baseLogger.Info("webhook notifications enabled")
	}

	inventorySvc := inventorysvc.NewService(store.Stock(), baseLogger.Named("svc.inventory"))

	var stockNotifier salessvc.Notifier
	if notifier != nil {
		stockNotifier = notifier
	}
	salesSvc := salessvc.NewService(store.Stock(), store.Sales(), stockNotifier, cfg.Webhook.LowStockThreshold, baseLogger.Named("svc.sales"))
	reportingSvc := reportingsvc.NewService(store.Sales(), store.Reports(), sheetsRepo, baseLogger.Named("svc.reporting"))

	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory"))
	salesHandler := handlers.NewSalesHandler(salesSvc, baseLogger.Named("handlers.sales"))
	engine := router.New(cfg.Server, inventoryHandler, salesHandler, baseLogger.Named("router"))

	var summaryNotifier scheduler.SummaryNotifier
	if notifier != nil {
		summaryNotifier = notifier
	}
	sched := scheduler.NewScheduler(*cfg, reportingSvc, summaryNotifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
