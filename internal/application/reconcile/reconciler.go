package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
)

// Sweep pairs a sync target with the WMS collection that carries its source
// datum.
type Sweep struct {
	Target order.SyncTarget
	Kind   cartoncloud.OrderKind
}

// The two production sweeps: scheduled delivery dates come from consignment
// runsheets, packing statuses from outbound orders.
var (
	DeliveryDateSweep = Sweep{Target: order.TargetDeliveryDate, Kind: cartoncloud.KindConsignments}
	StatusSweep       = Sweep{Target: order.TargetStatus, Kind: cartoncloud.KindOutboundOrders}
)

// SweepSummary reports one sweep run: how much was pending, how much the WMS
// had data for, and the per-order update outcomes.
type SweepSummary struct {
	Target     order.SyncTarget     `json:"target"`
	Pending    int                  `json:"pending"`
	Warehouses int                  `json:"warehouses"`
	Searched   int                  `json:"searched"`
	Updates    []order.UpdateResult `json:"updates"`
}

// Succeeded counts updates that applied cleanly.
func (s SweepSummary) Succeeded() int {
	n := 0
	for _, u := range s.Updates {
		if u.Status == order.UpdateSucceeded {
			n++
		}
	}
	return n
}

// Failed counts updates that errored.
func (s SweepSummary) Failed() int {
	return len(s.Updates) - s.Succeeded()
}

// Reconciler runs reconciliation sweeps end to end.
type Reconciler struct {
	finder   *PendingOrderFinder
	searcher WarehouseSearcher
	updater  *BatchUpdater
	logger   *zap.Logger
}

// NewReconciler wires a reconciler from its three stages.
func NewReconciler(finder *PendingOrderFinder, searcher WarehouseSearcher, updater *BatchUpdater, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		finder:   finder,
		searcher: searcher,
		updater:  updater,
		logger:   logger,
	}
}

// Run executes one sweep over the window: query pending orders, search each
// warehouse's WMS tenant concurrently, derive updates from what the WMS
// returned, and apply them. Only the pending query can fail the run; every
// later failure is isolated per warehouse or per order.
func (r *Reconciler) Run(ctx context.Context, sweep Sweep, window order.Window) (*SweepSummary, error) {
	groups, err := r.finder.Find(ctx, sweep.Target, window)
	if err != nil {
		return nil, err
	}

	pending := 0
	for _, g := range groups {
		pending += len(g.TransactionIDs)
	}
	summary := &SweepSummary{
		Target:     sweep.Target,
		Pending:    pending,
		Warehouses: len(groups),
	}
	if pending == 0 {
		r.logger.Info("Sweep found nothing pending", zap.String("target", string(sweep.Target)))
		return summary, nil
	}

	results := r.searchWarehouses(ctx, sweep.Kind, groups)
	summary.Searched = len(results)

	updates := DeriveUpdates(sweep.Target, results)
	summary.Updates = r.updater.Apply(ctx, updates)

	r.logger.Info("Sweep complete",
		zap.String("target", string(sweep.Target)),
		zap.Int("pending", summary.Pending),
		zap.Int("searched", summary.Searched),
		zap.Int("updated", summary.Succeeded()),
		zap.Int("failed", summary.Failed()),
	)
	return summary, nil
}

// searchWarehouses fans out one WMS search per warehouse group. A failing
// warehouse logs and contributes nothing; the other warehouses' results are
// still collected.
func (r *Reconciler) searchWarehouses(ctx context.Context, kind cartoncloud.OrderKind, groups []PendingGroup) []cartoncloud.SearchResult {
	var (
		mu      sync.Mutex
		results []cartoncloud.SearchResult
		wg      sync.WaitGroup
	)
	for _, g := range groups {
		wg.Add(1)
		go func(g PendingGroup) {
			defer wg.Done()
			found, err := r.searcher.Search(ctx, kind, g.Config, g.TransactionIDs)
			if err != nil {
				r.logger.Error("Warehouse search failed",
					zap.String("warehouse", g.Warehouse),
					zap.Int("transaction_ids", len(g.TransactionIDs)),
					zap.Error(err),
				)
				return
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
		}(g)
	}
	wg.Wait()
	return results
}
