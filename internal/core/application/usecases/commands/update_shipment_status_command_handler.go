package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	// maxUpdateAttempts bounds the optimistic concurrency retry loop. Each
	// attempt re-runs the whole load-authorize-guard-write sequence against
	// the latest committed state.
	maxUpdateAttempts = 3

	// defaultSyncTimeout bounds the post-commit calls to the order service
	// when no ceiling is configured.
	defaultSyncTimeout = 3 * time.Second
)

// UpdateShipmentStatusCommandHandler is the shipment state machine
// orchestrator. For one update request it loads the aggregate, runs the
// access policy, applies the transition guard and field merge, persists the
// result, and then triggers the best-effort synchronization side effects
// against the order service.
//
// Guarantees:
//   - authorization and the transition guard run before any mutation; a
//     rejected request leaves the aggregate and its history untouched
//   - persistence is the durability boundary: once the commit succeeds, the
//     transition stands regardless of what happens downstream
//   - the order-status push fires only when the committed status strictly
//     differs from the prior one and has a mapping; the audit record is
//     published for every committed update
//   - side-effect failures are logged, never surfaced to the caller, never
//     retried in the request path, and bounded by a timeout on a context
//     detached from the request (cancellation after commit must not cancel
//     the sync)
//   - updates to the same order are linearized by the repository's
//     version-conditional write; on conflict the whole sequence is retried
//     against the fresh state, up to maxUpdateAttempts times
type UpdateShipmentStatusCommandHandler struct {
	uowFactory   ShipmentUoWFactory
	accessPolicy services.ShipmentAccessPolicy
	orderSync    ports.OrderStatusSynchronizer
	auditLog     ports.AuditLogPublisher
	locker       ports.ShipmentLocker
	syncTimeout  time.Duration
	logger       *slog.Logger
}

// NewUpdateShipmentStatusCommandHandler creates the state machine handler.
//
// locker may be nil: the optimistic version check alone linearizes updates in
// single-writer deployments. syncTimeout <= 0 falls back to the default
// ceiling for the post-commit order service calls.
func NewUpdateShipmentStatusCommandHandler(
	uowFactory ShipmentUoWFactory,
	orderSync ports.OrderStatusSynchronizer,
	auditLog ports.AuditLogPublisher,
	locker ports.ShipmentLocker,
	syncTimeout time.Duration,
	logger *slog.Logger,
) UpdateShipmentStatusCommandHandler {
	if syncTimeout <= 0 {
		syncTimeout = defaultSyncTimeout
	}
	return UpdateShipmentStatusCommandHandler{
		uowFactory:   uowFactory,
		accessPolicy: services.NewShipmentAccessPolicy(),
		orderSync:    orderSync,
		auditLog:     auditLog,
		locker:       locker,
		syncTimeout:  syncTimeout,
		logger:       logger.With("component", "update_shipment_status_handler"),
	}
}

// Handle processes one update request and returns the committed aggregate.
//
// Failure modes surfaced to the caller (all detected before any mutation):
//   - errs.ErrObjectNotFound: no tracking record for the order
//   - services.ErrActorIsForbidden / services.ErrShipperNotAssigned
//   - shipment.ErrInvalidTransition (carrying the allowed next statuses)
//   - shipment.ErrProofOfDeliveryRequired / shipment.ErrFailureReasonRequired
//
// Synchronization failures after the commit are logged only; the returned
// aggregate reflects the committed state either way.
func (h UpdateShipmentStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateShipmentStatusCommand,
) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if h.locker != nil {
		release, err := h.locker.Lock(ctx, cmd.OrderID())
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var (
		committed *shipment.Shipment
		previous  shipment.Status
		err       error
	)
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		committed, previous, err = h.update(ctx, cmd)
		if !errors.Is(err, errs.ErrConcurrencyConflict) {
			break
		}
		h.logger.WarnContext(ctx, "Concurrent shipment update detected, retrying",
			"orderId", cmd.OrderID().String(),
			"attempt", attempt,
		)
	}
	if err != nil {
		return nil, err
	}

	h.synchronize(ctx, cmd, committed, previous)

	return committed, nil
}

// update runs one attempt of the transactional read-evaluate-write sequence.
// Returns the committed aggregate and the status it held before this update.
func (h UpdateShipmentStatusCommandHandler) update(
	ctx context.Context,
	cmd UpdateShipmentStatusCommand,
) (*shipment.Shipment, shipment.Status, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, shipment.Unknown, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()

	aggregate, err := repo.GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return nil, shipment.Unknown, err
	}

	if err = h.accessPolicy.Authorize(cmd.Actor(), aggregate); err != nil {
		return nil, shipment.Unknown, err
	}

	previous := aggregate.Status()

	if err = aggregate.Apply(cmd.Patch(), time.Now().UTC()); err != nil {
		return nil, shipment.Unknown, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, shipment.Unknown, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, shipment.Unknown, err
	}

	return aggregate, previous, nil
}

// synchronize performs the post-commit side effects: the order-status push
// (only on a strict status change with a mapping) and the audit record.
// Both are best-effort; failures are logged and abandoned.
func (h UpdateShipmentStatusCommandHandler) synchronize(
	ctx context.Context,
	cmd UpdateShipmentStatusCommand,
	committed *shipment.Shipment,
	previous shipment.Status,
) {
	syncCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.syncTimeout)
	defer cancel()

	if committed.Status() != previous {
		if mapped, ok := committed.Status().OrderStatus(); ok {
			if err := h.orderSync.PushOrderStatus(syncCtx, committed.OrderID(), mapped); err != nil {
				h.logger.ErrorContext(syncCtx, "Order status push failed",
					"orderId", committed.OrderID().String(),
					"status", string(mapped),
					"error", err,
				)
			}
		}
	}

	entry := buildAuditEntry(cmd, committed, previous)
	if err := h.auditLog.PublishAuditLog(syncCtx, entry); err != nil {
		h.logger.ErrorContext(syncCtx, "Audit log publish failed",
			"orderId", committed.OrderID().String(),
			"action", string(entry.Action),
			"error", err,
		)
	}
}

// buildAuditEntry assembles the structured change record for a committed
// update. The action label is chosen from the request's fields with the
// precedence: failure reason > proof upload > status update.
func buildAuditEntry(
	cmd UpdateShipmentStatusCommand,
	committed *shipment.Shipment,
	previous shipment.Status,
) ports.AuditEntry {
	patch := cmd.Patch()

	action := ports.AuditActionDeliveryStatusUpdate
	switch {
	case patch.HasFailureReason():
		action = ports.AuditActionDeliveryFailed
	case patch.HasProofUpload():
		action = ports.AuditActionProofOfDeliveryUpload
	}

	var changes []ports.AuditChange
	if committed.Status() != previous {
		changes = append(changes, ports.AuditChange{
			Field:    "status",
			OldValue: previous.String(),
			NewValue: committed.Status().String(),
		})
	}
	if patch.HasFailureReason() {
		changes = append(changes, ports.AuditChange{
			Field:    "deliveryFailedReason",
			NewValue: committed.FailureReason(),
		})
	}
	if len(patch.ProofImages) > 0 || len(patch.FailureProofs) > 0 {
		changes = append(changes, ports.AuditChange{
			Field:    "proofCount",
			NewValue: fmt.Sprintf("%d", len(patch.ProofImages)+len(patch.FailureProofs)),
		})
	}

	metadata := map[string]string{
		"source": "fulfillment-service",
	}
	if committed.CurrentLocation() != "" {
		metadata["location"] = committed.CurrentLocation()
	}
	if committed.DeliveryNote() != "" {
		metadata["note"] = committed.DeliveryNote()
	}

	return ports.AuditEntry{
		OrderID: committed.OrderID(),
		Action:  action,
		PerformedBy: ports.AuditActor{
			ID:   cmd.Actor().ID().String(),
			Name: cmd.Actor().Name(),
			Role: cmd.Actor().Role().String(),
		},
		Changes:  changes,
		Metadata: metadata,
	}
}
