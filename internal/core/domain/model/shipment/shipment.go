package shipment

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for shipment operations.
var (
	// ErrShipmentIsNotConstructed is returned when a Shipment instance was not
	// created through NewShipment or RestoreShipment.
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment constructor")
	// ErrProofOfDeliveryRequired is returned when a transition into delivered
	// is requested without any proof image or customer signature, neither
	// freshly supplied nor previously stored.
	ErrProofOfDeliveryRequired = errs.NewValueIsRequiredError("proof of delivery image or customer signature")
	// ErrFailureReasonRequired is returned when a transition into
	// delivery_failed is requested without a non-blank reason in the request.
	ErrFailureReasonRequired = errs.NewValueIsRequiredError("delivery failed reason")
)

// HistoryEntry is one element of the append-only tracking history. Each
// committed update appends exactly one entry capturing the resulting state;
// entries are never mutated, reordered, or truncated after append, so the
// history length is a direct audit of how many updates have been committed.
type HistoryEntry struct {
	Status    Status
	Location  string
	Note      string
	Timestamp time.Time
}

// Shipment is the tracking aggregate for one order's delivery. Exactly one
// Shipment exists per order; it is created when a shipper is assigned and is
// never hard-deleted, because it is the permanent delivery record.
//
// Invariants:
//   - status moves only along the transition graph (see Status)
//   - trackingHistory grows by exactly one entry per committed update
//   - proof-of-delivery evidence accumulates, it never shrinks
//   - terminal statuses (delivered, returned) accept no further updates
//
// All mutation goes through Apply; the struct uses private fields to keep
// the invariants enforceable.
type Shipment struct {
	// orderID identifies the owning order in the external order service
	orderID kernel.UUID
	// shipperID identifies the assigned delivery actor
	shipperID kernel.UUID
	// status is the current state in the delivery lifecycle
	status Status
	// currentLocation is the last known position (free text, optional)
	currentLocation string
	// history is the append-only tracking history
	history []HistoryEntry
	// proofImages are accumulated proof-of-delivery photo references
	proofImages []string
	// customerSignature is an optional signature evidence reference
	customerSignature string
	// deliveryNote is free-form descriptive metadata
	deliveryNote string
	// estimatedDelivery is the scheduled delivery time, if known
	estimatedDelivery *time.Time
	// failureReason is required when the shipment enters delivery_failed
	failureReason string
	// failureProofs are accumulated failed-attempt evidence references
	failureProofs []string
	// version supports optimistic concurrency control; every Apply bumps it
	version int
	// guard ensures the shipment was properly constructed
	guard guard.ConstructorGuard
}

// NewShipment creates the tracking record for a freshly assigned order.
// The shipment starts in Assigned status with an empty history; the first
// history entry is appended by the first committed update.
//
// Parameters:
//   - orderID: identifier of the owning order (must be a valid UUID)
//   - shipperID: identifier of the assigned shipper (must be a valid UUID)
//   - estimatedDelivery: optional delivery ETA
func NewShipment(orderID, shipperID kernel.UUID, estimatedDelivery *time.Time) (*Shipment, error) {
	s := &Shipment{
		status:  Assigned,
		version: 1,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setShipperID(shipperID),
	); err != nil {
		return nil, err
	}

	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		s.estimatedDelivery = &eta
	}

	return s, nil
}

// RestoreShipment reconstructs a Shipment aggregate from persistent storage.
// Unlike NewShipment, this constructor restores the full persisted state,
// including history, evidence, and the optimistic concurrency version.
// The restored shipment behaves identically to one mutated through Apply.
func RestoreShipment(
	orderID, shipperID kernel.UUID,
	status Status,
	currentLocation string,
	history []HistoryEntry,
	proofImages []string,
	customerSignature string,
	deliveryNote string,
	estimatedDelivery *time.Time,
	failureReason string,
	failureProofs []string,
	version int,
) (*Shipment, error) {
	s := &Shipment{
		currentLocation:   currentLocation,
		customerSignature: customerSignature,
		deliveryNote:      deliveryNote,
		failureReason:     failureReason,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setShipperID(shipperID),
		s.setStatus(status),
		s.setVersion(version),
	); err != nil {
		return nil, err
	}

	s.history = append(s.history, history...)
	s.proofImages = append(s.proofImages, proofImages...)
	s.failureProofs = append(s.failureProofs, failureProofs...)

	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		s.estimatedDelivery = &eta
	}

	return s, nil
}

// Validate ensures the Shipment was properly constructed through
// NewShipment or RestoreShipment.
func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

// IsEqual compares two shipments by the order they track.
func (s *Shipment) IsEqual(other *Shipment) bool {
	return other != nil && s.orderID.IsEqual(other.orderID)
}

// OrderID returns the identifier of the owning order.
func (s *Shipment) OrderID() kernel.UUID {
	return s.orderID
}

// ShipperID returns the identifier of the assigned shipper.
func (s *Shipment) ShipperID() kernel.UUID {
	return s.shipperID
}

// Status returns the current delivery status.
func (s *Shipment) Status() Status {
	return s.status
}

// CurrentLocation returns the last known position, or an empty string.
func (s *Shipment) CurrentLocation() string {
	return s.currentLocation
}

// History returns a copy of the append-only tracking history.
func (s *Shipment) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ProofOfDeliveryImages returns a copy of the accumulated proof references.
func (s *Shipment) ProofOfDeliveryImages() []string {
	out := make([]string, len(s.proofImages))
	copy(out, s.proofImages)
	return out
}

// CustomerSignature returns the signature evidence reference, or an empty string.
func (s *Shipment) CustomerSignature() string {
	return s.customerSignature
}

// DeliveryNote returns the delivery note, or an empty string.
func (s *Shipment) DeliveryNote() string {
	return s.deliveryNote
}

// EstimatedDelivery returns the delivery ETA. Nil if not scheduled.
func (s *Shipment) EstimatedDelivery() *time.Time {
	if s.estimatedDelivery == nil {
		return nil
	}
	eta := *s.estimatedDelivery
	return &eta
}

// FailureReason returns the recorded delivery failure reason, or an empty string.
func (s *Shipment) FailureReason() string {
	return s.failureReason
}

// FailureProofs returns a copy of the accumulated failed-attempt evidence.
func (s *Shipment) FailureProofs() []string {
	out := make([]string, len(s.failureProofs))
	copy(out, s.failureProofs)
	return out
}

// Version returns the optimistic concurrency version. It starts at 1 on
// creation and is bumped by every successful Apply; the repository's
// conditional update is keyed on the previously persisted value.
func (s *Shipment) Version() int {
	return s.version
}

// HasProofOfDelivery reports whether any delivery evidence has accumulated
// (at least one proof image or a customer signature).
func (s *Shipment) HasProofOfDelivery() bool {
	return len(s.proofImages) > 0 || strings.TrimSpace(s.customerSignature) != ""
}

// Apply validates and applies one update to the shipment. This is the
// transition guard plus the field-level merge of §updateStatus: it performs
// no I/O and either mutates the aggregate completely or not at all.
//
// Rules enforced, in order:
//   - the requested status (patch status, or the current status for
//     metadata-only patches) must be reachable per ValidateTransition;
//     terminal statuses reject everything, including no-ops
//   - delivered requires proof evidence, freshly supplied or already stored
//   - delivery_failed requires a non-blank reason in this request
//
// On success the merge overwrites scalar fields that are present in the
// patch, appends (never replaces) evidence lists, appends exactly one
// history entry capturing the resulting status, location, and note with the
// supplied commit timestamp, and bumps the version.
func (s *Shipment) Apply(patch Patch, now time.Time) error {
	if err := s.Validate(); err != nil {
		return err
	}

	requested := s.status
	if patch.Status != nil {
		requested = *patch.Status
	}

	if err := s.status.ValidateTransition(requested); err != nil {
		return err
	}
	if requested == Delivered && !patch.HasProofEvidence() && !s.HasProofOfDelivery() {
		return ErrProofOfDeliveryRequired
	}
	if requested == DeliveryFailed && !patch.HasFailureReason() {
		return ErrFailureReasonRequired
	}

	s.status = requested
	if patch.Location != nil {
		s.currentLocation = *patch.Location
	}
	s.proofImages = append(s.proofImages, patch.ProofImages...)
	if patch.Signature != nil {
		s.customerSignature = *patch.Signature
	}
	if patch.Note != nil {
		s.deliveryNote = *patch.Note
	}
	if patch.EstimatedDelivery != nil {
		eta := *patch.EstimatedDelivery
		s.estimatedDelivery = &eta
	}
	if patch.FailureReason != nil {
		s.failureReason = strings.TrimSpace(*patch.FailureReason)
	}
	s.failureProofs = append(s.failureProofs, patch.FailureProofs...)

	s.history = append(s.history, HistoryEntry{
		Status:    s.status,
		Location:  s.currentLocation,
		Note:      s.deliveryNote,
		Timestamp: now,
	})
	s.version++

	return nil
}

func (s *Shipment) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	s.orderID = orderID
	return nil
}

func (s *Shipment) setShipperID(shipperID kernel.UUID) error {
	if err := shipperID.Validate(); err != nil {
		return err
	}
	s.shipperID = shipperID
	return nil
}

func (s *Shipment) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	s.status = status
	return nil
}

func (s *Shipment) setVersion(version int) error {
	if version < 1 {
		return errs.NewVersionIsInvalidErrorWithCause("version")
	}
	s.version = version
	return nil
}
