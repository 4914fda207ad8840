// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the fulfillment service.
//
// # Available Jobs
//
// 1. OverdueShipmentJob - Runs every minute to flag active shipments whose
// estimated delivery time has passed
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(overdueShipmentsHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The overdue job uses the cron expression "0 * * * * *", running at the top
// of every minute. Overdue detection is a monitoring concern, not a state
// transition, so minute granularity is plenty.
//
// # Error Handling
//
// - The overdue job logs query failures; it never mutates shipment state
// - Failed job starts will stop any already running jobs
package jobs
