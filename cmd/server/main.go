package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/application/reconcile"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/audit"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/config"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/logger"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/netsuite"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/scheduler"
	"github.com/brendansiraky/beerfarm-scripts/internal/interfaces/http/handler"
	"github.com/brendansiraky/beerfarm-scripts/internal/interfaces/http/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer log.Sync()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := cfg.Registry()
	if err != nil {
		log.Fatal("Failed to build warehouse registry", zap.Error(err))
	}

	erp, err := netsuite.NewClient(netsuite.ClientConfig{
		BaseURL:     cfg.NetSuite.BaseURL,
		Credentials: cfg.NetSuite.Credentials(),
	}, log.Named("netsuite"))
	if err != nil {
		log.Fatal("Failed to create ERP client", zap.Error(err))
	}
	wms := cartoncloud.NewClient(cartoncloud.ClientConfig{}, log.Named("cartoncloud"))
	trail := audit.NewTrail(cfg.Audit.Dir, log.Named("audit"))

	finder := reconcile.NewPendingOrderFinder(erp, registry, log.Named("reconcile"))
	updater := reconcile.NewBatchUpdater(erp, log.Named("reconcile"))
	reconciler := reconcile.NewReconciler(finder, wms, updater, log.Named("reconcile"))

	var triggers []*scheduler.Trigger
	if cfg.Sync.Enabled {
		trigCfg := scheduler.Config{
			Interval:  cfg.Sync.Interval,
			StartHour: cfg.Sync.StartHour,
			EndHour:   cfg.Sync.EndHour,
		}
		for _, sweep := range []struct {
			name  string
			sweep reconcile.Sweep
		}{
			{"delivery-date", reconcile.DeliveryDateSweep},
			{"status", reconcile.StatusSweep},
		} {
			sweep := sweep
			trigger := scheduler.NewTrigger(sweep.name, trigCfg,
				scheduler.RunnerFunc(func(ctx context.Context, now time.Time) error {
					summary, err := reconciler.Run(ctx, sweep.sweep, cfg.Sync.Window(now))
					if err != nil {
						return err
					}
					trail.Record("sweep-"+sweep.name, summary)
					return nil
				}),
				log.Named("scheduler"),
			)
			if err := trigger.Start(); err != nil {
				log.Fatal("Failed to start sweep trigger", zap.String("trigger", sweep.name), zap.Error(err))
			}
			triggers = append(triggers, trigger)
		}
	}

	webhooks := handler.NewWebhookHandler(erp, trail)
	engine := router.New(webhooks, cfg.Webhook.APIKey, log)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info("Webhook server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	for _, trigger := range triggers {
		trigger.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
