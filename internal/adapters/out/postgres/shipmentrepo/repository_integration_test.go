package shipmentrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/shipmentrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// noopTracker satisfies the aggregate tracker dependency for tests that
// exercise the repository outside a unit of work.
type noopTracker struct{}

func (noopTracker) TrackAggregate(_ kernel.UUID, _ any) {}

// ShipmentRepositoryIntegrationTestSuite tests the GORM shipment repository
// against a real PostgreSQL database.
type ShipmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *shipmentrepo.GormShipmentRepository
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
func (suite *ShipmentRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&shipmentrepo.ShipmentDTO{})
	suite.Require().NoError(err)

	suite.repo = shipmentrepo.NewGormShipmentRepository(db, noopTracker{})
}

// SetupTest ensures clean database state before each test.
func (suite *ShipmentRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE shipments").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *ShipmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

// TestAddAndGetByOrderID verifies a freshly tracked shipment round-trips
// through the database with all fields intact.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestAddAndGetByOrderID() {
	ctx := context.Background()

	eta := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Microsecond)
	orderID := kernel.NewUUID()
	shipperID := kernel.NewUUID()

	created, err := shipment.NewShipment(orderID, shipperID, &eta)
	suite.Require().NoError(err)

	err = suite.repo.Add(ctx, created)
	suite.Require().NoError(err)

	loaded, err := suite.repo.GetByOrderID(ctx, orderID)
	suite.Require().NoError(err)

	suite.True(orderID.IsEqual(loaded.OrderID()))
	suite.True(shipperID.IsEqual(loaded.ShipperID()))
	suite.Equal(shipment.Assigned, loaded.Status())
	suite.Empty(loaded.History())
	suite.Equal(1, loaded.Version())
	suite.Require().NotNil(loaded.EstimatedDelivery())
	suite.WithinDuration(eta, *loaded.EstimatedDelivery(), time.Millisecond)
}

// TestGetByOrderID_NotFound verifies the error contract for missing records.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestGetByOrderID_NotFound() {
	_, err := suite.repo.GetByOrderID(context.Background(), kernel.NewUUID())
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrObjectNotFound))
}

// TestUpdate_PersistsFullState verifies updates round-trip the history,
// evidence arrays, and failure fields.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_PersistsFullState() {
	ctx := context.Background()

	created, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(ctx, created))

	pickedUp := shipment.PickedUp
	location := "Central warehouse"
	note := "Handle with care"
	err = created.Apply(shipment.Patch{
		Status:   &pickedUp,
		Location: &location,
		Note:     &note,
	}, time.Now().UTC().Truncate(time.Microsecond))
	suite.Require().NoError(err)

	err = suite.repo.Update(ctx, created)
	suite.Require().NoError(err)

	loaded, err := suite.repo.GetByOrderID(ctx, created.OrderID())
	suite.Require().NoError(err)

	suite.Equal(shipment.PickedUp, loaded.Status())
	suite.Equal("Central warehouse", loaded.CurrentLocation())
	suite.Equal("Handle with care", loaded.DeliveryNote())
	suite.Equal(2, loaded.Version())
	suite.Require().Len(loaded.History(), 1)
	suite.Equal(shipment.PickedUp, loaded.History()[0].Status)
	suite.Equal("Central warehouse", loaded.History()[0].Location)
}

// TestUpdate_ConcurrencyConflict verifies the version-conditional write: the
// writer holding a stale version loses and gets the conflict error.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_ConcurrencyConflict() {
	ctx := context.Background()

	created, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(ctx, created))

	// Two writers load the same committed state
	first, err := suite.repo.GetByOrderID(ctx, created.OrderID())
	suite.Require().NoError(err)
	second, err := suite.repo.GetByOrderID(ctx, created.OrderID())
	suite.Require().NoError(err)

	pickedUp := shipment.PickedUp
	err = first.Apply(shipment.Patch{Status: &pickedUp}, time.Now().UTC())
	suite.Require().NoError(err)
	err = second.Apply(shipment.Patch{Status: &pickedUp}, time.Now().UTC())
	suite.Require().NoError(err)

	// First writer wins
	err = suite.repo.Update(ctx, first)
	suite.Require().NoError(err)

	// Second writer conflicts
	err = suite.repo.Update(ctx, second)
	suite.Require().Error(err)
	suite.True(errors.Is(err, errs.ErrConcurrencyConflict))

	// The committed state reflects exactly one update
	loaded, err := suite.repo.GetByOrderID(ctx, created.OrderID())
	suite.Require().NoError(err)
	suite.Equal(2, loaded.Version())
	suite.Len(loaded.History(), 1)
}

// TestUpdate_EvidenceAccumulates verifies proof arrays grow across updates and
// survive the round trip.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_EvidenceAccumulates() {
	ctx := context.Background()

	created, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(ctx, created))

	// Walk to out_for_delivery
	for _, next := range []shipment.Status{shipment.PickedUp, shipment.InTransit, shipment.OutForDelivery} {
		status := next
		suite.Require().NoError(created.Apply(shipment.Patch{Status: &status}, time.Now().UTC()))
		suite.Require().NoError(suite.repo.Update(ctx, created))
	}

	// Fail once with evidence, then deliver with more evidence
	failed := shipment.DeliveryFailed
	reason := "Customer not at home"
	err = created.Apply(shipment.Patch{
		Status:        &failed,
		FailureReason: &reason,
		FailureProofs: []string{"https://cdn.example.com/fail/1.jpg"},
	}, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Update(ctx, created))

	outAgain := shipment.OutForDelivery
	suite.Require().NoError(created.Apply(shipment.Patch{Status: &outAgain}, time.Now().UTC()))
	suite.Require().NoError(suite.repo.Update(ctx, created))

	delivered := shipment.Delivered
	signature := "https://cdn.example.com/signatures/1.png"
	err = created.Apply(shipment.Patch{
		Status:      &delivered,
		ProofImages: []string{"https://cdn.example.com/pod/1.jpg", "https://cdn.example.com/pod/2.jpg"},
		Signature:   &signature,
	}, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Update(ctx, created))

	loaded, err := suite.repo.GetByOrderID(ctx, created.OrderID())
	suite.Require().NoError(err)

	suite.Equal(shipment.Delivered, loaded.Status())
	suite.Equal([]string{"https://cdn.example.com/pod/1.jpg", "https://cdn.example.com/pod/2.jpg"},
		loaded.ProofOfDeliveryImages())
	suite.Equal("https://cdn.example.com/signatures/1.png", loaded.CustomerSignature())
	suite.Equal("Customer not at home", loaded.FailureReason())
	suite.Equal([]string{"https://cdn.example.com/fail/1.jpg"}, loaded.FailureProofs())
	suite.Len(loaded.History(), 6)
}

// TestGetAllByShipperID verifies the shipper worklist retrieval.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestGetAllByShipperID() {
	ctx := context.Background()

	shipperID := kernel.NewUUID()
	otherShipperID := kernel.NewUUID()

	for i := 0; i < 3; i++ {
		s, err := shipment.NewShipment(kernel.NewUUID(), shipperID, nil)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.repo.Add(ctx, s))
	}

	other, err := shipment.NewShipment(kernel.NewUUID(), otherShipperID, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(ctx, other))

	mine, err := suite.repo.GetAllByShipperID(ctx, shipperID)
	suite.Require().NoError(err)
	suite.Len(mine, 3)
	for _, s := range mine {
		suite.True(shipperID.IsEqual(s.ShipperID()))
	}

	empty, err := suite.repo.GetAllByShipperID(ctx, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func TestShipmentRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ShipmentRepositoryIntegrationTestSuite))
}
