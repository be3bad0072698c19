// Package reconcile drives the ERP-to-WMS reconciliation sweeps: find ERP
// sales orders still missing a synced field, look up the corresponding WMS
// records per warehouse, derive field updates, and write them back.
package reconcile

import (
	"context"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
)

// OrderUpdatePort applies a partial field update to one ERP record addressed
// by transaction id. Shared by the batch updater and the webhook handlers so
// both paths exercise identical lookup and merge semantics.
type OrderUpdatePort interface {
	UpdateByTransactionID(ctx context.Context, kind order.Kind, transactionID string, fields order.Fields) (*order.Record, error)
}

// PendingQuerier finds ERP sales orders within a date window whose sync
// target field is still unset.
type PendingQuerier interface {
	FindPending(ctx context.Context, target order.SyncTarget, window order.Window) ([]order.PendingRow, error)
}

// WarehouseSearcher looks up WMS records by transaction id reference within
// one warehouse tenant.
type WarehouseSearcher interface {
	Search(ctx context.Context, kind cartoncloud.OrderKind, wh warehouse.Config, transactionIDs []string) ([]cartoncloud.SearchResult, error)
}
