package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/actor"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateShipmentStatusCommandIsNotConstructed = errors.New(
		"UpdateShipmentStatusCommand must be created via NewUpdateShipmentStatusCommand constructor",
	)
)

// UpdateShipmentStatusCommand represents one update request against a
// shipment's tracking record: an optional status transition plus any
// combination of location, evidence, note, ETA, and failure fields.
//
// Example:
//
//	status := shipment.Delivered
//	patch := shipment.Patch{
//	    Status:      &status,
//	    ProofImages: []string{"https://cdn.example.com/pod/1.jpg"},
//	}
//	cmd, err := NewUpdateShipmentStatusCommand(orderID, act, patch)
//	if err != nil {
//	    return fmt.Errorf("invalid update: %w", err)
//	}
//
//	updated, err := handler.Handle(ctx, cmd)
type UpdateShipmentStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   actor.Actor
	patch   shipment.Patch

	guard guard.ConstructorGuard
}

// NewUpdateShipmentStatusCommand creates a command to update a shipment's
// tracking record. Validates the order identifier, the acting principal, and
// the requested status when one is present. The evidence and reason rules are
// the transition guard's job; they depend on the aggregate's state and are
// evaluated by the handler.
func NewUpdateShipmentStatusCommand(
	orderID kernel.UUID,
	act actor.Actor,
	patch shipment.Patch,
) (UpdateShipmentStatusCommand, error) {
	cmd := UpdateShipmentStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(act),
		cmd.setPatch(patch),
	); err != nil {
		return UpdateShipmentStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateShipmentStatusCommandIsNotConstructed if validation fails.
func (c UpdateShipmentStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateShipmentStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order whose shipment is updated.
func (c UpdateShipmentStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Actor returns the principal performing the update.
func (c UpdateShipmentStatusCommand) Actor() actor.Actor {
	return c.actor
}

// Patch returns the field-level update to apply.
func (c UpdateShipmentStatusCommand) Patch() shipment.Patch {
	return c.patch
}

func (c *UpdateShipmentStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *UpdateShipmentStatusCommand) setActor(act actor.Actor) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *UpdateShipmentStatusCommand) setPatch(patch shipment.Patch) error {
	if patch.Status != nil {
		if err := patch.Status.Validate(); err != nil {
			return err
		}
	}
	c.patch = patch
	return nil
}
