package order

import (
	"encoding/json"
	"strings"
	"time"
)

// ERP custom field IDs written by the sync pipeline. Every other field on a
// sales or transfer order is read-only from this system's perspective.
const (
	FieldDeliveryDate = "custbody_ce_estdeliverydate"
	FieldStatus       = "custbody_status"
	Field3PLStatus    = "custbody_3pl_status"
	Field3PLArrival   = "custbody_3pl_arrival"
)

// Kind identifies which ERP record type an operation targets.
type Kind string

const (
	KindSalesOrder    Kind = "salesOrder"
	KindTransferOrder Kind = "transferOrder"
)

// IsValid returns true if the kind is a known ERP record type.
func (k Kind) IsValid() bool {
	switch k {
	case KindSalesOrder, KindTransferOrder:
		return true
	default:
		return false
	}
}

// SyncTarget selects which custom field a reconciliation sweep fills in.
type SyncTarget string

const (
	TargetDeliveryDate SyncTarget = "delivery-date"
	TargetStatus       SyncTarget = "status"
)

// Field returns the ERP field ID the target writes.
func (t SyncTarget) Field() string {
	if t == TargetStatus {
		return FieldStatus
	}
	return FieldDeliveryDate
}

// Fields is a partial field set for an ERP record write. Only the keys present
// are sent; the ERP merges them into the record (never a full replace).
type Fields map[string]string

// Record is the slice of an ERP order record the pipeline cares about: the
// internal numeric id, the human transaction reference, and the raw body for
// audit trails.
type Record struct {
	InternalID string
	TranID     string
	Body       json.RawMessage
}

// UpdateRequest is the unit of work for the batch updater: one transaction id
// and the partial field set to merge into its record.
type UpdateRequest struct {
	TransactionID string
	Fields        Fields
}

// UpdateStatus marks the outcome of a single update attempt.
type UpdateStatus string

const (
	UpdateSucceeded UpdateStatus = "success"
	UpdateFailed    UpdateStatus = "error"
)

// UpdateResult reports the outcome of one UpdateRequest. The batch updater
// returns exactly one result per request, in request order.
type UpdateResult struct {
	TransactionID string          `json:"transactionId"`
	Status        UpdateStatus    `json:"status"`
	Data          json.RawMessage `json:"data,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// PendingRow is one row of the ERP analytic query for orders missing a sync
// target field.
type PendingRow struct {
	TranID    string `json:"tranid"`
	TranDate  string `json:"trandate"`
	Warehouse string `json:"name"`
	OrderID   string `json:"salesorderid"`
	Status    string `json:"salesstatus"`
}

// Window bounds a reconciliation sweep: orders dated within [After, Before).
type Window struct {
	After  time.Time
	Before time.Time
}

// defaultLookback is how far a sweep reaches back when the caller supplies no
// explicit window. Orders older than this are assumed handled or abandoned.
const defaultLookback = 28 * 24 * time.Hour

// DefaultWindow returns the trailing lookback window ending at now.
func DefaultWindow(now time.Time) Window {
	return Window{After: now.Add(-defaultLookback), Before: now}
}

// StripReference normalizes a WMS customer reference to a transaction id.
// Upstream sometimes appends annotation text after the id, e.g.
// "TO16750  re-entry-2"; only the leading whitespace-delimited token is the
// true transaction id.
func StripReference(ref string) string {
	fields := strings.Fields(ref)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
