package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/warehouse"
)

type stubQuerier struct {
	rows []order.PendingRow
	err  error
}

func (s *stubQuerier) FindPending(ctx context.Context, target order.SyncTarget, window order.Window) ([]order.PendingRow, error) {
	return s.rows, s.err
}

func testRegistry(t *testing.T, names ...string) *warehouse.Registry {
	t.Helper()
	table := make(map[string]warehouse.Config, len(names))
	for _, name := range names {
		table[name] = warehouse.Config{
			TenantID:     uuid.New(),
			ClientID:     "id-" + name,
			ClientSecret: "secret-" + name,
		}
	}
	reg, err := warehouse.NewRegistry(table)
	require.NoError(t, err)
	return reg
}

func TestFindGroupsByWarehouseAndDropsUnknown(t *testing.T) {
	querier := &stubQuerier{rows: []order.PendingRow{
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO2", Warehouse: "Warehouse A"},
		{TranID: "SO3", Warehouse: "Unknown Warehouse"},
	}}
	finder := NewPendingOrderFinder(querier, testRegistry(t, "Warehouse A"), zap.NewNop())

	groups, err := finder.Find(context.Background(), order.TargetDeliveryDate, order.Window{})
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, "Warehouse A", groups[0].Warehouse)
	assert.Equal(t, []string{"SO1", "SO2"}, groups[0].TransactionIDs)
}

func TestFindDeduplicatesTransactionIDs(t *testing.T) {
	querier := &stubQuerier{rows: []order.PendingRow{
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO2", Warehouse: "Warehouse A"},
	}}
	finder := NewPendingOrderFinder(querier, testRegistry(t, "Warehouse A"), zap.NewNop())

	groups, err := finder.Find(context.Background(), order.TargetStatus, order.Window{})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"SO1", "SO2"}, groups[0].TransactionIDs)
}

func TestFindSplitsWarehouses(t *testing.T) {
	querier := &stubQuerier{rows: []order.PendingRow{
		{TranID: "SO1", Warehouse: "Warehouse A"},
		{TranID: "SO2", Warehouse: "Warehouse B"},
		{TranID: "SO3", Warehouse: "Warehouse A"},
	}}
	finder := NewPendingOrderFinder(querier, testRegistry(t, "Warehouse A", "Warehouse B"), zap.NewNop())

	groups, err := finder.Find(context.Background(), order.TargetDeliveryDate, order.Window{})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Warehouse A", groups[0].Warehouse)
	assert.Equal(t, []string{"SO1", "SO3"}, groups[0].TransactionIDs)
	assert.Equal(t, "Warehouse B", groups[1].Warehouse)
	assert.Equal(t, []string{"SO2"}, groups[1].TransactionIDs)
}

func TestFindPropagatesQueryError(t *testing.T) {
	querier := &stubQuerier{err: errors.New("suiteql unavailable")}
	finder := NewPendingOrderFinder(querier, testRegistry(t, "Warehouse A"), zap.NewNop())

	_, err := finder.Find(context.Background(), order.TargetDeliveryDate, order.Window{})
	assert.ErrorContains(t, err, "suiteql unavailable")
}
