// Command backfill runs a single reconciliation sweep over an explicit date
// window and prints the summary. Useful for re-syncing orders older than the
// scheduler's trailing window.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/application/reconcile"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/config"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/logger"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/netsuite"
)

const dateLayout = "2006-01-02"

func main() {
	configPath := flag.String("config", "", "path to config file (default ./config.toml)")
	target := flag.String("target", "delivery-date", "sweep target: delivery-date or status")
	after := flag.String("after", "", "window start date (YYYY-MM-DD)")
	before := flag.String("before", "", "window end date, exclusive (YYYY-MM-DD)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	var sweep reconcile.Sweep
	switch order.SyncTarget(*target) {
	case order.TargetDeliveryDate:
		sweep = reconcile.DeliveryDateSweep
	case order.TargetStatus:
		sweep = reconcile.StatusSweep
	default:
		fmt.Fprintln(os.Stderr, "unknown target:", *target)
		os.Exit(2)
	}

	window := cfg.Sync.Window(time.Now())
	if *after != "" {
		window.After, err = time.Parse(dateLayout, *after)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -after date:", err)
			os.Exit(2)
		}
	}
	if *before != "" {
		window.Before, err = time.Parse(dateLayout, *before)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -before date:", err)
			os.Exit(2)
		}
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "console"})
	defer log.Sync()

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

	finder := reconcile.NewPendingOrderFinder(erp, registry, log.Named("reconcile"))
	updater := reconcile.NewBatchUpdater(erp, log.Named("reconcile"))
	reconciler := reconcile.NewReconciler(finder, wms, updater, log.Named("reconcile"))

	summary, err := reconciler.Run(context.Background(), sweep, window)
	if err != nil {
		log.Fatal("Sweep failed", zap.Error(err))
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
	if summary.Failed() > 0 {
		os.Exit(1)
	}
}
