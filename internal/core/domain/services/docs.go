// Package services provides domain services that implement business decisions
// spanning more than one domain concept in the fulfillment system.
//
// The package includes:
//   - ShipmentAccessPolicy: role- and ownership-based authorization for
//     shipment tracking operations
//
// Domain services are pure: they perform no I/O and hold no state, following
// Domain-Driven Design principles.
package services
