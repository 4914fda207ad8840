package queries

import (
	"context"
	"database/sql"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetShipperShipmentsQueryHandler retrieves a shipper's assigned shipments
// from the database.
//
// Example:
//
//	handler := NewGetShipperShipmentsQueryHandler(db)
//	query, _ := NewGetShipperShipmentsQuery(shipperID)
//
//	worklist, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get shipper worklist: %v", err)
//	    return err
//	}
type GetShipperShipmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetShipperShipmentsQueryHandler creates a handler for shipper worklist queries.
// Requires a GORM database connection for query execution.
func NewGetShipperShipmentsQueryHandler(db *gorm.DB) GetShipperShipmentsQueryHandler {
	return GetShipperShipmentsQueryHandler{db: db}
}

// Handle executes the query to retrieve all shipments assigned to the shipper.
// Active shipments come first, then terminal ones, newest updates leading
// within each group. Returns an empty slice when the shipper has no shipments.
func (h GetShipperShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetShipperShipmentsQuery,
) ([]GetShipperShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	shipments := make([]GetShipperShipmentsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			status,
			current_location,
			estimated_delivery
		FROM shipments
		WHERE shipper_id = ?
		ORDER BY status IN (?, ?), updated_at DESC
	`, query.ShipperID().Bytes(), shipment.Delivered, shipment.Returned).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shipmentResp GetShipperShipmentsQueryResponse
		var orderID uuid.UUID
		var status int
		var location sql.NullString
		var eta sql.NullTime

		err = rows.Scan(
			&orderID,
			&status,
			&location,
			&eta,
		)
		if err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		shipmentResp.OrderID = id
		shipmentResp.Status = shipment.Status(status).String()
		shipmentResp.CurrentLocation = location.String
		shipmentResp.EstimatedDelivery = nullableTime(eta)
		shipments = append(shipments, shipmentResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shipments, nil
}
