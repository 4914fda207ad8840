package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

// OrderStatusSynchronizer pushes the authoritative shipment status into the
// external order service's status vocabulary.
//
// The call is best-effort: it runs after the local commit, its failure is
// logged and never unwinds the committed update, and it must be bounded by a
// timeout on the supplied context.
type OrderStatusSynchronizer interface {
	PushOrderStatus(ctx context.Context, orderID kernel.UUID, status shipment.OrderStatus) error
}

// AuditAction labels what kind of change an audit record describes.
type AuditAction string

const (
	AuditActionDeliveryStatusUpdate  AuditAction = "DELIVERY_STATUS_UPDATE"
	AuditActionProofOfDeliveryUpload AuditAction = "PROOF_OF_DELIVERY_UPLOAD"
	AuditActionDeliveryFailed        AuditAction = "DELIVERY_FAILED"
)

// AuditActor identifies who performed the change in the order service's
// audit vocabulary.
type AuditActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// AuditChange is one old/new value pair in an audit record.
type AuditChange struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// AuditEntry is the structured change record published to the order
// service's audit trail after a committed shipment update.
type AuditEntry struct {
	OrderID     kernel.UUID
	Action      AuditAction
	PerformedBy AuditActor
	Changes     []AuditChange
	Metadata    map[string]string
}

// AuditLogPublisher records a structured change record in the external order
// service's audit trail. Same best-effort contract as
// OrderStatusSynchronizer: post-commit, timeout-bounded, log-on-failure.
type AuditLogPublisher interface {
	PublishAuditLog(ctx context.Context, entry AuditEntry) error
}
