package queries_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetShipmentByOrderQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		orderID := kernel.NewUUID()

		query, err := queries.NewGetShipmentByOrderQuery(orderID)
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, orderID.IsEqual(query.OrderID()))
	})

	t.Run("should reject invalid order ID", func(t *testing.T) {
		_, err := queries.NewGetShipmentByOrderQuery(kernel.UUID{})
		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero-value query fails validation", func(t *testing.T) {
		var query queries.GetShipmentByOrderQuery
		assert.ErrorIs(t, query.Validate(), queries.ErrGetShipmentByOrderQueryIsNotConstructed)
	})
}

func TestNewGetShipperShipmentsQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		shipperID := kernel.NewUUID()

		query, err := queries.NewGetShipperShipmentsQuery(shipperID)
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.True(t, shipperID.IsEqual(query.ShipperID()))
	})

	t.Run("should reject invalid shipper ID", func(t *testing.T) {
		_, err := queries.NewGetShipperShipmentsQuery(kernel.UUID{})
		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero-value query fails validation", func(t *testing.T) {
		var query queries.GetShipperShipmentsQuery
		assert.ErrorIs(t, query.Validate(), queries.ErrGetShipperShipmentsQueryIsNotConstructed)
	})
}

func TestNewGetOverdueShipmentsQuery(t *testing.T) {
	t.Run("should create valid query", func(t *testing.T) {
		asOf := time.Now().UTC()

		query, err := queries.NewGetOverdueShipmentsQuery(asOf)
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, asOf, query.AsOf())
	})

	t.Run("should reject zero time", func(t *testing.T) {
		_, err := queries.NewGetOverdueShipmentsQuery(time.Time{})
		require.Error(t, err)
	})

	t.Run("zero-value query fails validation", func(t *testing.T) {
		var query queries.GetOverdueShipmentsQuery
		assert.ErrorIs(t, query.Validate(), queries.ErrGetOverdueShipmentsQueryIsNotConstructed)
	})
}
