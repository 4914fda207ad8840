// Package shipment implements the delivery tracking aggregate and its state
// machine. A Shipment tracks one order from assignment through delivery,
// failure, or return.
//
// The package contains:
//   - Status: the delivery lifecycle enum with a first-class transition graph
//   - Shipment: the aggregate root holding history, evidence, and version
//   - Patch: the field-level update applied by one updateStatus request
//   - HistoryEntry: one element of the append-only tracking history
//
// The transition guard is pure: Apply performs no I/O and either mutates the
// aggregate completely or not at all. Orchestration, persistence, and the
// synchronization side effects live in the application and adapter layers.
package shipment
