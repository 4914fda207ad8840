package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetShipmentByOrderQueryHandler reads one shipment's tracking projection
// from the database.
//
// Example:
//
//	handler := NewGetShipmentByOrderQueryHandler(db)
//	query, _ := NewGetShipmentByOrderQuery(orderID)
//
//	projection, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // No tracking record for this order
//	}
type GetShipmentByOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetShipmentByOrderQueryHandler creates a handler for single-shipment reads.
// Requires a GORM database connection for query execution.
func NewGetShipmentByOrderQueryHandler(db *gorm.DB) GetShipmentByOrderQueryHandler {
	return GetShipmentByOrderQueryHandler{db: db}
}

// Handle executes the query and returns the projection, or an error matching
// errs.ErrObjectNotFound when no tracking record exists for the order.
func (h GetShipmentByOrderQueryHandler) Handle(
	ctx context.Context,
	query GetShipmentByOrderQuery,
) (GetShipmentByOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetShipmentByOrderQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			order_id,
			shipper_id,
			status,
			current_location,
			delivery_note,
			estimated_delivery,
			jsonb_array_length(tracking_history),
			version
		FROM shipments
		WHERE order_id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		resp       GetShipmentByOrderQueryResponse
		orderID    uuid.UUID
		shipperID  uuid.UUID
		status     int
		location   sql.NullString
		note       sql.NullString
		eta        sql.NullTime
		historyLen sql.NullInt64
	)

	err := row.Scan(&orderID, &shipperID, &status, &location, &note, &eta, &historyLen, &resp.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return GetShipmentByOrderQueryResponse{}, errs.NewObjectNotFoundError("orderId", query.OrderID().String())
	}
	if err != nil {
		return GetShipmentByOrderQueryResponse{}, err
	}

	resp.OrderID, err = kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return GetShipmentByOrderQueryResponse{}, err
	}
	resp.ShipperID, err = kernel.UUIDFromBytes(shipperID[:])
	if err != nil {
		return GetShipmentByOrderQueryResponse{}, err
	}

	resp.Status = shipment.Status(status).String()
	resp.CurrentLocation = location.String
	resp.DeliveryNote = note.String
	resp.EstimatedDelivery = nullableTime(eta)
	resp.HistoryLength = int(historyLen.Int64)

	return resp, nil
}

// nullableTime converts a sql.NullTime into a *time.Time.
func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
