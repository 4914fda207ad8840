package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOverdueShipmentsQueryIsNotConstructed = errors.New(
		"GetOverdueShipmentsQuery must be created via NewGetOverdueShipmentsQuery constructor",
	)
)

// GetOverdueShipmentsQuery retrieves active shipments whose estimated delivery
// time has passed. Used by the overdue monitoring job.
type GetOverdueShipmentsQuery struct { //nolint:recvcheck //using for validation
	asOf time.Time

	guard guard.ConstructorGuard
}

// NewGetOverdueShipmentsQuery creates a query for shipments overdue as of the
// given instant.
func NewGetOverdueShipmentsQuery(asOf time.Time) (GetOverdueShipmentsQuery, error) {
	if asOf.IsZero() {
		return GetOverdueShipmentsQuery{}, errors.New("asOf time is required")
	}
	return GetOverdueShipmentsQuery{
		asOf:  asOf,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOverdueShipmentsQuery) Validate() error {
	return q.guard.Validate(ErrGetOverdueShipmentsQueryIsNotConstructed)
}

// AsOf returns the instant against which overdue status is evaluated.
func (q GetOverdueShipmentsQuery) AsOf() time.Time {
	return q.asOf
}

// GetOverdueShipmentsQueryResponse is one overdue shipment.
type GetOverdueShipmentsQueryResponse struct {
	OrderID           kernel.UUID
	ShipperID         kernel.UUID
	Status            string
	EstimatedDelivery time.Time
}
