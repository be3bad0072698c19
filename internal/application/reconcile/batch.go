package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
)

// BatchUpdater applies update requests to the ERP one at a time, collecting a
// per-item outcome instead of aborting on the first failure.
type BatchUpdater struct {
	port   OrderUpdatePort
	logger *zap.Logger
}

// NewBatchUpdater wires a batch updater over the ERP update port.
func NewBatchUpdater(port OrderUpdatePort, logger *zap.Logger) *BatchUpdater {
	return &BatchUpdater{port: port, logger: logger}
}

// Apply runs every request sequentially against sales orders. The result
// slice has exactly one entry per request, in request order, so callers can
// correlate outcomes positionally as well as by transaction id.
func (b *BatchUpdater) Apply(ctx context.Context, requests []order.UpdateRequest) []order.UpdateResult {
	results := make([]order.UpdateResult, 0, len(requests))
	for _, req := range requests {
		rec, err := b.port.UpdateByTransactionID(ctx, order.KindSalesOrder, req.TransactionID, req.Fields)
		if err != nil {
			b.logger.Error("Order update failed",
				zap.String("transaction_id", req.TransactionID),
				zap.Error(err),
			)
			results = append(results, order.UpdateResult{
				TransactionID: req.TransactionID,
				Status:        order.UpdateFailed,
				Error:         err.Error(),
			})
			continue
		}
		results = append(results, order.UpdateResult{
			TransactionID: req.TransactionID,
			Status:        order.UpdateSucceeded,
			Data:          rec.Body,
		})
	}
	return results
}
