package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// OverdueShipmentJob periodically scans for active shipments that have missed
// their estimated delivery time and reports them through structured logs.
// The job observes; it never transitions shipment state.
type OverdueShipmentJob struct {
	handler queries.GetOverdueShipmentsQueryHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewOverdueShipmentJob creates a new job for overdue shipment monitoring.
// Uses GetOverdueShipmentsQueryHandler to scan for overdue shipments every minute.
func NewOverdueShipmentJob(handler queries.GetOverdueShipmentsQueryHandler, logger *slog.Logger) *OverdueShipmentJob {
	return &OverdueShipmentJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "overdue_shipment_job"),
	}
}

// Start begins the overdue shipment job to run at the top of every minute.
func (j *OverdueShipmentJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()

		query, queryErr := queries.NewGetOverdueShipmentsQuery(time.Now().UTC())
		if queryErr != nil {
			j.logger.ErrorContext(ctx, "Overdue shipment job failed to build query", "error", queryErr)
			return
		}

		overdue, handleErr := j.handler.Handle(ctx, query)
		if handleErr != nil {
			j.logger.ErrorContext(ctx, "Overdue shipment job failed", "error", handleErr)
			return
		}

		for _, item := range overdue {
			j.logger.WarnContext(ctx, "Shipment is overdue",
				"orderId", item.OrderID.String(),
				"shipperId", item.ShipperID.String(),
				"status", item.Status,
				"estimatedDelivery", item.EstimatedDelivery,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Overdue shipment job started (running every minute)")
	return nil
}

// Stop stops the overdue shipment job.
func (j *OverdueShipmentJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Overdue shipment job stopped")
}
