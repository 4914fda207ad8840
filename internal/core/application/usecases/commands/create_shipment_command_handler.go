package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"
)

// ErrShipmentAlreadyExists is returned when a tracking record already exists
// for the order. Creation is idempotent-guarded: assignment may be retried,
// but only the first attempt creates the record.
var ErrShipmentAlreadyExists = errors.New("shipment tracking already exists for order")

// CreateShipmentCommandHandler handles the business logic for starting a
// delivery tracking record when a shipper is assigned to an order.
//
// Example:
//
//	handler := NewCreateShipmentCommandHandler(uowFactory)
//	cmd, _ := NewCreateShipmentCommand(orderID, shipperID, nil)
//
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrShipmentAlreadyExists) {
//	    // Assignment already tracked; safe to ignore
//	}
type CreateShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
}

// NewCreateShipmentCommandHandler creates a handler for tracking creation.
// Requires a ShipmentUoWFactory for transactional persistence.
func NewCreateShipmentCommandHandler(uowFactory ShipmentUoWFactory) CreateShipmentCommandHandler {
	return CreateShipmentCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the tracking creation command.
// Creates the shipment in "assigned" status with an empty history.
// Uses a transaction to ensure the record is properly persisted or rolled back.
func (h CreateShipmentCommandHandler) Handle(ctx context.Context, cmd CreateShipmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()

	_, err := repo.GetByOrderID(ctx, cmd.OrderID())
	if err == nil {
		return ErrShipmentAlreadyExists
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	aggregate, err := shipment.NewShipment(cmd.OrderID(), cmd.ShipperID(), cmd.EstimatedDelivery())
	if err != nil {
		return err
	}

	if err = repo.Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
