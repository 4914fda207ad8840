package shipment

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// ErrInvalidTransition is the sentinel error for status transitions that are
// not present in the transition graph. Use errors.Is to detect it; the
// concrete InvalidTransitionError carries the allowed next statuses so that
// callers can tell the client how to correct the request.
var ErrInvalidTransition = errors.New("status transition is not allowed")

// Status represents the lifecycle state of a shipment.
// It implements a state machine with defined transitions to ensure
// shipments follow the correct delivery workflow.
//
// State transitions:
//
//	assigned -> picked_up -> in_transit -> out_for_delivery ──┬──> delivered
//	                              ┌────────────┐              │
//	                              │            ▼              │
//	                              └── delivery_failed <───────┘
//	                                       │
//	                                       └──> returned
//
// delivered and returned are terminal: no further transitions are accepted,
// including same-status no-op updates.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Assigned is the initial status, set when a shipper is assigned to an order.
	Assigned

	// PickedUp indicates the shipper has collected the parcel.
	PickedUp

	// InTransit indicates the parcel is moving between facilities.
	InTransit

	// OutForDelivery indicates the parcel is on the final delivery leg.
	OutForDelivery

	// DeliveryFailed indicates a delivery attempt failed. The shipment can be
	// retried (back to OutForDelivery) or sent back (Returned).
	DeliveryFailed

	// Delivered indicates the parcel reached the customer. Terminal.
	Delivered

	// Returned indicates the parcel went back to the sender. Terminal.
	Returned
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Assigned:       "assigned",
		PickedUp:       "picked_up",
		InTransit:      "in_transit",
		OutForDelivery: "out_for_delivery",
		DeliveryFailed: "delivery_failed",
		Delivered:      "delivered",
		Returned:       "returned",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Assigned:       "assigned",
		PickedUp:       "picked_up",
		InTransit:      "in_transit",
		OutForDelivery: "out_for_delivery",
		DeliveryFailed: "delivery_failed",
		Delivered:      "delivered",
		Returned:       "returned",
	}
}

// getTransitionTable returns the allowed-transition graph as a first-class
// adjacency map (current status -> allowed next statuses). Both the guard and
// the exhaustive transition tests are driven by this single structure.
//
// Terminal statuses map to an empty list.
func getTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		Assigned:       {PickedUp},
		PickedUp:       {InTransit},
		InTransit:      {OutForDelivery},
		OutForDelivery: {Delivered, DeliveryFailed},
		DeliveryFailed: {OutForDelivery, Returned},
		Delivered:      {},
		Returned:       {},
	}
}

// StatusFromString parses the wire representation of a status.
// Returns an error for unrecognized values.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid shipment status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status.
// Implements fmt.Stringer; safe to call on invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status accepts no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Returned
}

// AllowedNext returns the statuses reachable from this one in a single
// transition. The slice is a copy; mutating it does not affect the graph.
// Terminal and invalid statuses return an empty slice.
func (s Status) AllowedNext() []Status {
	next := getTransitionTable()[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// ValidateTransition checks whether the shipment may move from this status to
// next. A same-status "transition" is allowed on non-terminal statuses: it
// represents a metadata-only update and still appends a history entry.
//
// Returns an InvalidTransitionError carrying the allowed next statuses when
// the transition is not in the graph or the current status is terminal.
func (s Status) ValidateTransition(next Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}

	if s.IsTerminal() {
		return NewInvalidTransitionError(s, next)
	}
	if next == s {
		return nil
	}
	for _, allowed := range getTransitionTable()[s] {
		if allowed == next {
			return nil
		}
	}
	return NewInvalidTransitionError(s, next)
}

// OrderStatus is the order service's status vocabulary. Only a subset of
// shipment statuses propagates to the order service; the early legs of a
// delivery are internal-only.
type OrderStatus string

const (
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusDeliveryFailed OrderStatus = "DELIVERY_FAILED"
	OrderStatusReturned       OrderStatus = "RETURNED"
)

// getOrderStatusMapping returns the shipment-to-order status mapping.
// Statuses absent from this map are not propagated to the order service.
func getOrderStatusMapping() map[Status]OrderStatus {
	//nolint:exhaustive // assigned, picked_up and in_transit are internal-only
	return map[Status]OrderStatus{
		OutForDelivery: OrderStatusOutForDelivery,
		Delivered:      OrderStatusDelivered,
		DeliveryFailed: OrderStatusDeliveryFailed,
		Returned:       OrderStatusReturned,
	}
}

// OrderStatus returns the order service's vocabulary value for this status.
// The second return value is false for statuses the order service does not
// need to know about.
func (s Status) OrderStatus() (OrderStatus, bool) {
	mapped, ok := getOrderStatusMapping()[s]
	return mapped, ok
}

// InvalidTransitionError describes a rejected status transition.
// Allowed carries the statuses reachable from From so the caller can be told
// how to correct the request.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

// NewInvalidTransitionError creates an InvalidTransitionError for the given
// pair, capturing the allowed next statuses from the transition graph.
func NewInvalidTransitionError(from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{
		From:    from,
		To:      to,
		Allowed: from.AllowedNext(),
	}
}

// Error formats the rejected pair and the allowed next statuses.
func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, len(e.Allowed))
	for i, s := range e.Allowed {
		allowed[i] = s.String()
	}
	return fmt.Sprintf("%s: %s -> %s (allowed next: %s)",
		ErrInvalidTransition, e.From, e.To, strings.Join(allowed, ", "))
}

// Unwrap returns the sentinel error to support errors.Is checks.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
