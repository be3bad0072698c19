package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
)

type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]cartoncloud.SearchResult
	errs    map[string]error
	calls   []string
}

func (s *stubSearcher) Search(ctx context.Context, kind cartoncloud.OrderKind, wh warehouse.Config, transactionIDs []string) ([]cartoncloud.SearchResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, wh.ClientID)
	s.mu.Unlock()
	if err := s.errs[wh.ClientID]; err != nil {
		return nil, err
	}
	return s.results[wh.ClientID], nil
}

func newReconciler(t *testing.T, querier *stubQuerier, searcher *stubSearcher, port *stubUpdatePort, names ...string) *Reconciler {
	t.Helper()
	registry := testRegistry(t, names...)
	log := zap.NewNop()
	return NewReconciler(
		NewPendingOrderFinder(querier, registry, log),
		searcher,
		NewBatchUpdater(port, log),
		log,
	)
}

func TestRunEndToEnd(t *testing.T) {
	querier := &stubQuerier{rows: []order.PendingRow{
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO2", Warehouse: "Warehouse A"},
	}}
	searcher := &stubSearcher{results: map[string][]cartoncloud.SearchResult{
		"id-Warehouse A": {
			consignmentResult("SO1", "2025-06-10"),
			consignmentResult("SO2", ""),
		},
	}}
	port := &stubUpdatePort{}

	r := newReconciler(t, querier, searcher, port, "Warehouse A")
	summary, err := r.Run(context.Background(), DeliveryDateSweep, order.Window{})
	require.NoError(t, err)

	assert.Equal(t, order.TargetDeliveryDate, summary.Target)
	assert.Equal(t, 2, summary.Pending)
	assert.Equal(t, 1, summary.Warehouses)
	assert.Equal(t, 2, summary.Searched)
	require.Len(t, summary.Updates, 1)
	assert.Equal(t, "SO1", summary.Updates[0].TransactionID)
	assert.Equal(t, 1, summary.Succeeded())
	assert.Equal(t, 0, summary.Failed())
	assert.Equal(t, []string{"SO1"}, port.calls)
}

func TestRunIsolatesWarehouseFailure(t *testing.T) {
	querier := &stubQuerier{rows: []order.PendingRow{
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO2", Warehouse: "Warehouse B"},
	}}
	searcher := &stubSearcher{
		results: map[string][]cartoncloud.SearchResult{
			"id-Warehouse B": {outboundResult("SO2", "DISPATCHED")},
		},
		errs: map[string]error{
			"id-Warehouse A": errors.New("token endpoint down"),
		},
	}
	port := &stubUpdatePort{}

	r := newReconciler(t, querier, searcher, port, "Warehouse A", "Warehouse B")
	summary, err := r.Run(context.Background(), StatusSweep, order.Window{})
	require.NoError(t, err)

	// Warehouse A's failure contributes nothing but Warehouse B still syncs.
	assert.ElementsMatch(t, []string{"id-Warehouse A", "id-Warehouse B"}, searcher.calls)
	require.Len(t, summary.Updates, 1)
	assert.Equal(t, "SO2", summary.Updates[0].TransactionID)
	assert.Equal(t, order.UpdateSucceeded, summary.Updates[0].Status)
}

func TestRunNothingPendingIsNoOp(t *testing.T) {
	querier := &stubQuerier{}
	searcher := &stubSearcher{}
	port := &stubUpdatePort{}

	r := newReconciler(t, querier, searcher, port, "Warehouse A")
	summary, err := r.Run(context.Background(), DeliveryDateSweep, order.Window{})
	require.NoError(t, err)

	assert.Zero(t, summary.Pending)
	assert.Empty(t, summary.Updates)
	assert.Empty(t, searcher.calls)
	assert.Empty(t, port.calls)
}

func TestRunAbortsWhenPendingQueryFails(t *testing.T) {
	querier := &stubQuerier{err: errors.New("suiteql unavailable")}
	r := newReconciler(t, querier, &stubSearcher{}, &stubUpdatePort{}, "Warehouse A")

	_, err := r.Run(context.Background(), DeliveryDateSweep, order.Window{})
	assert.ErrorContains(t, err, "suiteql unavailable")
}
