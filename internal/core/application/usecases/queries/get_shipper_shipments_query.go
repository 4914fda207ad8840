package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetShipperShipmentsQueryIsNotConstructed = errors.New(
		"GetShipperShipmentsQuery must be created via NewGetShipperShipmentsQuery constructor",
	)
)

// GetShipperShipmentsQuery retrieves all shipments assigned to one shipper.
// Backs the shipper's worklist view.
type GetShipperShipmentsQuery struct { //nolint:recvcheck //using for validation
	shipperID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetShipperShipmentsQuery creates a query for one shipper's worklist.
func NewGetShipperShipmentsQuery(shipperID kernel.UUID) (GetShipperShipmentsQuery, error) {
	if err := shipperID.Validate(); err != nil {
		return GetShipperShipmentsQuery{}, err
	}
	return GetShipperShipmentsQuery{
		shipperID: shipperID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetShipperShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetShipperShipmentsQueryIsNotConstructed)
}

// ShipperID returns the identifier of the queried shipper.
func (q GetShipperShipmentsQuery) ShipperID() kernel.UUID {
	return q.shipperID
}

// GetShipperShipmentsQueryResponse is one row of a shipper's worklist.
type GetShipperShipmentsQueryResponse struct {
	OrderID           kernel.UUID
	Status            string
	CurrentLocation   string
	EstimatedDelivery *time.Time
}
