package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOverdueShipmentsQueryHandler retrieves active shipments that have missed
// their estimated delivery time. Terminal shipments are never overdue.
type GetOverdueShipmentsQueryHandler struct {
	db *gorm.DB
}

// NewGetOverdueShipmentsQueryHandler creates a handler for overdue shipment queries.
// Requires a GORM database connection for query execution.
func NewGetOverdueShipmentsQueryHandler(db *gorm.DB) GetOverdueShipmentsQueryHandler {
	return GetOverdueShipmentsQueryHandler{db: db}
}

// Handle executes the query to retrieve all overdue shipments as of the
// query's instant. Most overdue shipments come first.
func (h GetOverdueShipmentsQueryHandler) Handle(
	ctx context.Context,
	query GetOverdueShipmentsQuery,
) ([]GetOverdueShipmentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	shipments := make([]GetOverdueShipmentsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			shipper_id,
			status,
			estimated_delivery
		FROM shipments
		WHERE status NOT IN (?, ?)
			AND estimated_delivery IS NOT NULL
			AND estimated_delivery < ?
		ORDER BY estimated_delivery
	`, shipment.Delivered, shipment.Returned, query.AsOf()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shipmentResp GetOverdueShipmentsQueryResponse
		var orderID, shipperID uuid.UUID
		var status int

		err = rows.Scan(
			&orderID,
			&shipperID,
			&status,
			&shipmentResp.EstimatedDelivery,
		)
		if err != nil {
			return nil, err
		}

		id, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		shipmentResp.OrderID = id

		sid, idErr := kernel.UUIDFromBytes(shipperID[:])
		if idErr != nil {
			return nil, idErr
		}
		shipmentResp.ShipperID = sid
		shipmentResp.Status = shipment.Status(status).String()
		shipments = append(shipments, shipmentResp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return shipments, nil
}
