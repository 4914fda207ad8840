package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// ShipmentLocker serializes updates to a single shipment across processes.
// It is an optional hardening on top of the repository's optimistic version
// check, for deployments where multiple writer processes race on the same
// aggregate.
type ShipmentLocker interface {
	// Lock acquires an exclusive per-order lock, blocking until the lock is
	// acquired or the context is done. The returned release function must be
	// called exactly once.
	Lock(ctx context.Context, orderID kernel.UUID) (release func(), err error)
}
