// Package handler holds the gin handlers for the webhook surface.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brendansiraky/beerfarm-scripts/internal/application/reconcile"
	"github.com/brendansiraky/beerfarm-scripts/internal/domain/order"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/audit"
	"github.com/brendansiraky/beerfarm-scripts/internal/infrastructure/logger"
)

// WebhookHandler ingests WMS event notifications and applies the resulting
// field updates to the ERP. Every authenticated, well-formed event is
// acknowledged with 202 even when the update fails; the failure is recorded
// in the audit trail instead, so the sender never retries a payload this
// system cannot act on.
type WebhookHandler struct {
	updater reconcile.OrderUpdatePort
	trail   *audit.Trail
}

// NewWebhookHandler wires the webhook handler over the shared ERP update
// port.
func NewWebhookHandler(updater reconcile.OrderUpdatePort, trail *audit.Trail) *WebhookHandler {
	return &WebhookHandler{updater: updater, trail: trail}
}

// Payload shapes. Every field is optional and unknown extra fields pass
// through unvalidated: the WMS payload shape evolves independently of this
// system, so only what is read gets a type.

type consignmentPayload struct {
	References *struct {
		Customer  string `json:"customer"`
		NumericID string `json:"numericId"`
	} `json:"references"`
	Details *struct {
		Runsheet *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"runsheet"`
	} `json:"details"`
}

type purchaseOrderPayload struct {
	Status     string `json:"status" binding:"omitempty,oneof=DRAFT NOT_YET_RECEIVED RECEIVED VERIFIED ALLOCATED REJECTED"`
	References *struct {
		Customer string `json:"customer"`
	} `json:"references"`
	Details *struct {
		ArrivalDate string `json:"arrivalDate"`
	} `json:"details"`
}

type salesOrderPayload struct {
	Status     string `json:"status" binding:"omitempty,oneof=AWAITING_PICK_AND_PACK DISPATCHED DRAFT PACKED PACKING_IN_PROGRESS REJECTED"`
	References *struct {
		Customer string `json:"customer"`
	} `json:"references"`
}

// Consignment handles a consignment event. When the payload carries both a
// customer reference and a runsheet date, the sales order's estimated
// delivery date is updated; otherwise the event is a no-op.
func (h *WebhookHandler) Consignment(c *gin.Context) {
	var payload consignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	h.trail.Record("consignment-incoming", payload)

	tranID := ""
	if payload.References != nil {
		tranID = payload.References.Customer
	}
	date := ""
	if payload.Details != nil && payload.Details.Runsheet != nil {
		date = payload.Details.Runsheet.Date
	}

	if tranID != "" && date != "" {
		fields := order.Fields{order.FieldDeliveryDate: date}
		h.apply(c, order.KindSalesOrder, tranID, fields, payload, "consignment")
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Received - Consignment"})
}

// PurchaseOrder handles an inbound-order event. Status and arrival date are
// evaluated and applied as independent transfer-order updates since either
// may be absent, and a failure of one must not prevent the other. The
// correlation key has trailing annotation text stripped.
func (h *WebhookHandler) PurchaseOrder(c *gin.Context) {
	var payload purchaseOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	h.trail.Record("purchase-incoming", payload)

	tranID := ""
	if payload.References != nil {
		tranID = order.StripReference(payload.References.Customer)
	}
	arrivalDate := ""
	if payload.Details != nil {
		arrivalDate = payload.Details.ArrivalDate
	}

	if tranID != "" && payload.Status != "" {
		fields := order.Fields{order.Field3PLStatus: payload.Status}
		h.apply(c, order.KindTransferOrder, tranID, fields, payload, "purchase")
	}
	if tranID != "" && arrivalDate != "" {
		fields := order.Fields{order.Field3PLArrival: arrivalDate}
		h.apply(c, order.KindTransferOrder, tranID, fields, payload, "purchase")
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Received - Purchase Order"})
}

// SalesOrder handles an outbound-order status event, updating the sales
// order's status field.
func (h *WebhookHandler) SalesOrder(c *gin.Context) {
	var payload salesOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}
	h.trail.Record("sales-incoming", payload)

	tranID := ""
	if payload.References != nil {
		tranID = payload.References.Customer
	}

	if tranID != "" && payload.Status != "" {
		fields := order.Fields{order.FieldStatus: payload.Status}
		h.apply(c, order.KindSalesOrder, tranID, fields, payload, "sales")
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Received - Sales Order"})
}

// apply performs one ERP update for a webhook event, recording the outcome
// either way. Errors are audited and logged, never returned to the sender.
func (h *WebhookHandler) apply(c *gin.Context, kind order.Kind, tranID string, fields order.Fields, payload any, event string) {
	log := logger.GetGinLogger(c)
	if _, err := h.updater.UpdateByTransactionID(c.Request.Context(), kind, tranID, fields); err != nil {
		h.trail.Record(event+"-error", map[string]any{
			"payload": payload,
			"updated": fields,
			"error":   err.Error(),
		})
		log.Error("Webhook update failed",
			zap.String("event", event),
			zap.String("transaction_id", tranID),
			zap.Error(err),
		)
		return
	}
	h.trail.Record(event+"-updated", map[string]any{
		"payload": payload,
		"updated": fields,
	})
	log.Info("Webhook update applied",
		zap.String("event", event),
		zap.String("transaction_id", tranID),
	)
}
