package cmd

import (
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/ordersvc"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/redis/shipmentlock"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	orderClient *ordersvc.Client
	locker      ports.ShipmentLocker
	syncTimeout time.Duration
	logger      *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	root := CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		orderClient: ordersvc.NewClient(configs.OrderServiceURL, configs.InternalAuthSecret),
		syncTimeout: time.Duration(configs.SyncTimeoutSeconds) * time.Second,
		logger:      logger,
	}

	// The distributed lock is optional hardening; without Redis the
	// version-conditional write alone handles concurrent updates.
	if configs.RedisURL != "" {
		opts, err := redis.ParseURL(configs.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL, continuing without distributed locking", "error", err)
		} else {
			root.locker = shipmentlock.NewRedisShipmentLocker(redis.NewClient(opts))
		}
	}

	return root
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	var f commands.ShipmentUoWFactory = FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateShipmentCommandHandler(f)
}

func (c *CompositionRoot) CreateUpdateShipmentStatusCommandHandler() commands.UpdateShipmentStatusCommandHandler {
	var f commands.ShipmentUoWFactory = FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateShipmentStatusCommandHandler(
		f,
		c.orderClient,
		c.orderClient,
		c.locker,
		c.syncTimeout,
		c.logger,
	)
}

func (c *CompositionRoot) CreateGetShipmentByOrderQueryHandler() queries.GetShipmentByOrderQueryHandler {
	return queries.NewGetShipmentByOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetShipperShipmentsQueryHandler() queries.GetShipperShipmentsQueryHandler {
	return queries.NewGetShipperShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOverdueShipmentsQueryHandler() queries.GetOverdueShipmentsQueryHandler {
	return queries.NewGetOverdueShipmentsQueryHandler(c.gormDB)
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}
