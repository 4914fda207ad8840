package shipmentrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormShipmentRepository implements ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormShipmentRepository creates a new GORM shipment repository.
func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new shipment tracking record to the database.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// Update saves an existing shipment with a conditional write keyed on the
// version the row held when the aggregate was loaded. Apply has already bumped
// the in-memory version, so the expected stored version is one behind it. A
// write that matches no row means another writer committed in between; the
// caller gets an error matching errs.ErrConcurrencyConflict and is expected to
// reload and retry.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	expectedVersion := aggregate.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ShipmentDTO{}).
		Where("order_id = ? AND version = ?", dto.OrderID, expectedVersion).
		Updates(map[string]any{
			"status":                   dto.Status,
			"current_location":         dto.CurrentLocation,
			"tracking_history":         dto.TrackingHistory,
			"proof_of_delivery_images": dto.ProofOfDeliveryImages,
			"customer_signature":       dto.CustomerSignature,
			"delivery_note":            dto.DeliveryNote,
			"estimated_delivery":       dto.EstimatedDelivery,
			"delivery_failed_reason":   dto.DeliveryFailedReason,
			"delivery_failed_proofs":   dto.DeliveryFailedProofs,
			"version":                  dto.Version,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewConcurrencyConflictError("shipment", aggregate.OrderID().String(), expectedVersion)
	}

	r.tracker.TrackAggregate(aggregate.OrderID(), aggregate)
	return nil
}

// GetByOrderID retrieves the shipment tracking the given order.
func (r *GormShipmentRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*shipment.Shipment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipment", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllByShipperID retrieves all shipments assigned to the given shipper.
// Returns an empty slice when the shipper has no shipments.
func (r *GormShipmentRepository) GetAllByShipperID(
	ctx context.Context,
	shipperID kernel.UUID,
) ([]*shipment.Shipment, error) {
	if err := shipperID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ShipmentDTO
	if err := r.db.WithContext(ctx).
		Where("shipper_id = ?", shipperID.Bytes()).
		Order("updated_at DESC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	shipments := make([]*shipment.Shipment, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}

	return shipments, nil
}
