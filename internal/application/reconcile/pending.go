package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
)

// PendingGroup is the set of pending transaction ids for one recognized
// warehouse, ready to be searched against that warehouse's WMS tenant.
type PendingGroup struct {
	Warehouse      string
	Config         warehouse.Config
	TransactionIDs []string
}

// PendingOrderFinder queries the ERP for orders still missing a synced field
// and groups them by warehouse.
type PendingOrderFinder struct {
	querier  PendingQuerier
	registry *warehouse.Registry
	logger   *zap.Logger
}

// NewPendingOrderFinder wires a finder over the ERP query port and the
// warehouse registry.
func NewPendingOrderFinder(querier PendingQuerier, registry *warehouse.Registry, logger *zap.Logger) *PendingOrderFinder {
	return &PendingOrderFinder{
		querier:  querier,
		registry: registry,
		logger:   logger,
	}
}

// Find returns pending orders for the target grouped by warehouse. Rows whose
// warehouse name is absent from the registry are dropped with a warning; they
// never fail the sweep. Transaction ids are deduplicated within each group,
// preserving first-seen order.
func (f *PendingOrderFinder) Find(ctx context.Context, target order.SyncTarget, window order.Window) ([]PendingGroup, error) {
	rows, err := f.querier.FindPending(ctx, target, window)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*PendingGroup)
	var names []string
	seen := make(map[string]map[string]struct{})
	dropped := 0

	for _, row := range rows {
		cfg, ok := f.registry.ConfigFor(row.Warehouse)
		if !ok {
			dropped++
			f.logger.Warn("Dropping pending order for unrecognized warehouse",
				zap.String("transaction_id", row.TranID),
				zap.String("warehouse", row.Warehouse),
			)
			continue
		}
		g, ok := groups[row.Warehouse]
		if !ok {
			g = &PendingGroup{Warehouse: row.Warehouse, Config: cfg}
			groups[row.Warehouse] = g
			names = append(names, row.Warehouse)
			seen[row.Warehouse] = make(map[string]struct{})
		}
		if _, dup := seen[row.Warehouse][row.TranID]; dup {
			continue
		}
		seen[row.Warehouse][row.TranID] = struct{}{}
		g.TransactionIDs = append(g.TransactionIDs, row.TranID)
	}

	out := make([]PendingGroup, 0, len(names))
	for _, name := range names {
		out = append(out, *groups[name])
	}

	f.logger.Info("Grouped pending orders by warehouse",
		zap.String("target", string(target)),
		zap.Int("rows", len(rows)),
		zap.Int("warehouses", len(out)),
		zap.Int("dropped", dropped),
	)
	return out, nil
}
