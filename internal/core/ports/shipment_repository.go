// Package ports defines the contracts between the application core and the
// infrastructure adapters, enabling dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment tracking
// aggregates. One record exists per order; records are never hard-deleted.
type ShipmentRepository interface {
	// Add persists a new shipment aggregate. Exactly one tracking record may
	// exist per order; adding a second one for the same order fails.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists changes to an existing shipment aggregate with a
	// conditional write keyed on the previously persisted version. When a
	// concurrent writer committed first, Update returns an error matching
	// errs.ErrConcurrencyConflict and the caller is expected to reload the
	// aggregate and retry the whole read-evaluate-write sequence.
	Update(ctx context.Context, aggregate *shipment.Shipment) error

	// GetByOrderID retrieves the shipment tracking the given order.
	// Returns an error matching errs.ErrObjectNotFound when no record exists.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*shipment.Shipment, error)

	// GetAllByShipperID retrieves all shipments assigned to the given shipper.
	GetAllByShipperID(ctx context.Context, shipperID kernel.UUID) ([]*shipment.Shipment, error)
}
