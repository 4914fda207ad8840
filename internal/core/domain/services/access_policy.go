package services

import (
	"errors"

	"fulfillment/internal/core/domain/model/actor"
	"fulfillment/internal/core/domain/model/shipment"
)

// Authorization errors returned by the access policy.
var (
	// ErrActorIsForbidden is returned when the actor's role carries no access
	// to shipment tracking at all.
	ErrActorIsForbidden = errors.New("actor is not allowed to modify shipment tracking")
	// ErrShipperNotAssigned is returned when a shipper attempts to modify a
	// shipment assigned to a different shipper.
	ErrShipperNotAssigned = errors.New("shipper is not assigned to this shipment")
)

// ShipmentAccessPolicy is a domain service deciding whether an actor may
// operate on a shipment. The decision is pure: it depends only on the actor's
// role and the shipment's assigned shipper, and performs no I/O.
//
// Rules:
//   - admin and branch manager: always allowed
//   - staff: allowed (operational override)
//   - shipper: allowed only for shipments assigned to them
//   - any other role: denied
//
// The policy must be evaluated before the transition guard so that an
// unauthorized actor cannot probe transition validity.
//
// Example usage:
//
//	policy := NewShipmentAccessPolicy()
//	if err := policy.Authorize(actor, aggregate); err != nil {
//	    // errors.Is(err, ErrShipperNotAssigned) or ErrActorIsForbidden
//	    return err
//	}
//	// Proceed with the transition guard
type ShipmentAccessPolicy struct{}

// NewShipmentAccessPolicy creates a new ShipmentAccessPolicy instance.
func NewShipmentAccessPolicy() ShipmentAccessPolicy {
	return ShipmentAccessPolicy{}
}

// Authorize decides whether the actor may operate on the shipment.
//
// Returns:
//   - nil when access is granted
//   - ErrShipperNotAssigned when a shipper targets someone else's shipment
//   - ErrActorIsForbidden for roles without tracking access
//   - a construction error when either argument was not built via its constructor
func (p ShipmentAccessPolicy) Authorize(act actor.Actor, aggregate *shipment.Shipment) error {
	if err := act.Validate(); err != nil {
		return err
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	switch act.Role() {
	case actor.RoleAdmin, actor.RoleBranchManager, actor.RoleStaff:
		return nil
	case actor.RoleShipper:
		if act.ID().IsEqual(aggregate.ShipperID()) {
			return nil
		}
		return ErrShipperNotAssigned
	default:
		return ErrActorIsForbidden
	}
}
