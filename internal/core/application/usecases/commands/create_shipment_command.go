package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateShipmentCommandIsNotConstructed = errors.New(
		"CreateShipmentCommand must be created via NewCreateShipmentCommand constructor",
	)
)

// CreateShipmentCommand represents a request to create the tracking record for
// an order that has just been assigned to a shipper. Exactly one tracking
// record exists per order; the command is rejected when one already exists.
//
// Example:
//
//	cmd, err := NewCreateShipmentCommand(orderID, shipperID, &eta)
//	if err != nil {
//	    return fmt.Errorf("invalid assignment data: %w", err)
//	}
//
//	handler := NewCreateShipmentCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create tracking: %w", err)
//	}
type CreateShipmentCommand struct { //nolint:recvcheck //using for validation
	orderID           kernel.UUID
	shipperID         kernel.UUID
	estimatedDelivery *time.Time

	guard guard.ConstructorGuard
}

// NewCreateShipmentCommand creates a command to start tracking a delivery.
// Validates that both the order and shipper identifiers are valid UUIDs.
func NewCreateShipmentCommand(
	orderID, shipperID kernel.UUID,
	estimatedDelivery *time.Time,
) (CreateShipmentCommand, error) {
	cmd := CreateShipmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setShipperID(shipperID),
	); err != nil {
		return CreateShipmentCommand{}, err
	}

	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		cmd.estimatedDelivery = &eta
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateShipmentCommandIsNotConstructed if validation fails.
func (c CreateShipmentCommand) Validate() error {
	return c.guard.Validate(ErrCreateShipmentCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to track.
func (c CreateShipmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ShipperID returns the identifier of the assigned shipper.
func (c CreateShipmentCommand) ShipperID() kernel.UUID {
	return c.shipperID
}

// EstimatedDelivery returns the optional delivery ETA.
func (c CreateShipmentCommand) EstimatedDelivery() *time.Time {
	if c.estimatedDelivery == nil {
		return nil
	}
	eta := *c.estimatedDelivery
	return &eta
}

func (c *CreateShipmentCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateShipmentCommand) setShipperID(shipperID kernel.UUID) error {
	if err := shipperID.Validate(); err != nil {
		return err
	}
	c.shipperID = shipperID
	return nil
}
