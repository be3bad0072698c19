package reconcile

import (
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/cartoncloud"
)

// DeriveUpdates turns WMS search results into ERP update requests for the
// given sync target. Results the WMS has no datum for yet are skipped: a
// consignment without a runsheet date, or an outbound order without a status,
// produces no update and stays pending for the next sweep.
func DeriveUpdates(target order.SyncTarget, results []cartoncloud.SearchResult) []order.UpdateRequest {
	updates := make([]order.UpdateRequest, 0, len(results))
	for _, res := range results {
		id := res.TransactionID()
		if id == "" {
			continue
		}
		var value string
		switch target {
		case order.TargetDeliveryDate:
			value = res.RunsheetDate()
		case order.TargetStatus:
			value = res.Status
		}
		if value == "" {
			continue
		}
		updates = append(updates, order.UpdateRequest{
			TransactionID: id,
			Fields:        order.Fields{target.Field(): value},
		})
	}
	return updates
}
