// Package queries contains read-only operations in the CQRS architecture.
// Query handlers read projections straight from the database, bypassing the
// domain model and the unit of work used by the write side.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetShipmentByOrderQueryIsNotConstructed = errors.New(
		"GetShipmentByOrderQuery must be created via NewGetShipmentByOrderQuery constructor",
	)
)

// GetShipmentByOrderQuery retrieves the tracking projection for one order.
//
// Example:
//
//	query, err := NewGetShipmentByOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	projection, err := handler.Handle(ctx, query)
type GetShipmentByOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetShipmentByOrderQuery creates a query for one order's tracking record.
func NewGetShipmentByOrderQuery(orderID kernel.UUID) (GetShipmentByOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetShipmentByOrderQuery{}, err
	}
	return GetShipmentByOrderQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetShipmentByOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetShipmentByOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the queried order.
func (q GetShipmentByOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetShipmentByOrderQueryResponse is the read-side projection of one
// shipment's tracking record. The history length stands in for the full
// history: it is a direct audit of how many updates have been committed.
type GetShipmentByOrderQueryResponse struct {
	OrderID           kernel.UUID
	ShipperID         kernel.UUID
	Status            string
	CurrentLocation   string
	DeliveryNote      string
	EstimatedDelivery *time.Time
	HistoryLength     int
	Version           int
}
