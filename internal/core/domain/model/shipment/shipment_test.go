package shipment_test

import (
	"errors"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func statusPtr(s shipment.Status) *shipment.Status {
	return &s
}

func newTestShipment(t *testing.T) *shipment.Shipment {
	t.Helper()

	s, err := shipment.NewShipment(kernel.NewUUID(), kernel.NewUUID(), nil)
	require.NoError(t, err)
	return s
}

// advanceTo walks a shipment along the happy path up to the target status.
func advanceTo(t *testing.T, s *shipment.Shipment, target shipment.Status) {
	t.Helper()

	path := []shipment.Status{
		shipment.PickedUp, shipment.InTransit, shipment.OutForDelivery,
	}
	for _, next := range path {
		if s.Status() == target {
			return
		}
		require.NoError(t, s.Apply(shipment.Patch{Status: statusPtr(next)}, time.Now().UTC()))
	}
	require.Equal(t, target, s.Status(), "target %s is not on the happy path", target)
}

func TestNewShipment(t *testing.T) {
	validOrderID := kernel.NewUUID()
	validShipperID := kernel.NewUUID()

	t.Run("should create valid shipment with all valid parameters", func(t *testing.T) {
		eta := time.Now().UTC().Add(24 * time.Hour)

		s, err := shipment.NewShipment(validOrderID, validShipperID, &eta)

		require.NoError(t, err)
		assert.NotNil(t, s)
		require.NoError(t, s.Validate())
		assert.True(t, s.OrderID().IsEqual(validOrderID))
		assert.True(t, s.ShipperID().IsEqual(validShipperID))
		assert.Equal(t, shipment.Assigned, s.Status())
		assert.Empty(t, s.History())
		assert.Equal(t, 1, s.Version())
		require.NotNil(t, s.EstimatedDelivery())
		assert.Equal(t, eta, *s.EstimatedDelivery())
		assert.False(t, s.HasProofOfDelivery())
	})

	t.Run("should allow nil estimated delivery", func(t *testing.T) {
		s, err := shipment.NewShipment(validOrderID, validShipperID, nil)

		require.NoError(t, err)
		assert.Nil(t, s.EstimatedDelivery())
	})

	t.Run("should fail with invalid order ID", func(t *testing.T) {
		var invalidID kernel.UUID

		s, err := shipment.NewShipment(invalidID, validShipperID, nil)

		require.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should fail with invalid shipper ID", func(t *testing.T) {
		var invalidID kernel.UUID

		s, err := shipment.NewShipment(validOrderID, invalidID, nil)

		require.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestRestoreShipment(t *testing.T) {
	orderID := kernel.NewUUID()
	shipperID := kernel.NewUUID()
	now := time.Now().UTC()

	t.Run("should restore full persisted state", func(t *testing.T) {
		history := []shipment.HistoryEntry{
			{Status: shipment.PickedUp, Location: "Depot", Timestamp: now},
			{Status: shipment.InTransit, Location: "Highway 7", Timestamp: now},
		}

		s, err := shipment.RestoreShipment(
			orderID, shipperID,
			shipment.InTransit,
			"Highway 7",
			history,
			[]string{"img-1"},
			"sig-1",
			"fragile",
			&now,
			"",
			nil,
			3,
		)

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, shipment.InTransit, s.Status())
		assert.Equal(t, "Highway 7", s.CurrentLocation())
		assert.Len(t, s.History(), 2)
		assert.Equal(t, []string{"img-1"}, s.ProofOfDeliveryImages())
		assert.Equal(t, "sig-1", s.CustomerSignature())
		assert.Equal(t, "fragile", s.DeliveryNote())
		assert.Equal(t, 3, s.Version())
		assert.True(t, s.HasProofOfDelivery())
	})

	t.Run("should reject invalid status", func(t *testing.T) {
		_, err := shipment.RestoreShipment(
			orderID, shipperID, shipment.Unknown,
			"", nil, nil, "", "", nil, "", nil, 1,
		)
		require.Error(t, err)
	})

	t.Run("should reject version below one", func(t *testing.T) {
		_, err := shipment.RestoreShipment(
			orderID, shipperID, shipment.Assigned,
			"", nil, nil, "", "", nil, "", nil, 0,
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})
}

func TestShipmentApply_StatusTransitions(t *testing.T) {
	t.Run("should walk the happy path to delivered", func(t *testing.T) {
		s := newTestShipment(t)
		now := time.Now().UTC()

		for _, next := range []shipment.Status{
			shipment.PickedUp, shipment.InTransit, shipment.OutForDelivery,
		} {
			require.NoError(t, s.Apply(shipment.Patch{Status: statusPtr(next)}, now))
			assert.Equal(t, next, s.Status())
		}

		err := s.Apply(shipment.Patch{
			Status:      statusPtr(shipment.Delivered),
			ProofImages: []string{"pod-1"},
		}, now)
		require.NoError(t, err)
		assert.Equal(t, shipment.Delivered, s.Status())
		assert.Len(t, s.History(), 4)
		assert.Equal(t, 5, s.Version())
	})

	t.Run("should reject skipping a leg", func(t *testing.T) {
		s := newTestShipment(t)

		err := s.Apply(shipment.Patch{Status: statusPtr(shipment.InTransit)}, time.Now().UTC())

		require.Error(t, err)
		assert.True(t, errors.Is(err, shipment.ErrInvalidTransition))
		assert.Equal(t, shipment.Assigned, s.Status(), "rejected update must not mutate")
		assert.Empty(t, s.History(), "rejected update must not append history")
		assert.Equal(t, 1, s.Version(), "rejected update must not bump version")
	})

	t.Run("should allow retry loop between delivery_failed and out_for_delivery", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)
		now := time.Now().UTC()

		err := s.Apply(shipment.Patch{
			Status:        statusPtr(shipment.DeliveryFailed),
			FailureReason: strPtr("nobody home"),
		}, now)
		require.NoError(t, err)

		require.NoError(t, s.Apply(shipment.Patch{Status: statusPtr(shipment.OutForDelivery)}, now))
		assert.Equal(t, shipment.OutForDelivery, s.Status())
	})

	t.Run("should allow returning a failed delivery", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)
		now := time.Now().UTC()

		require.NoError(t, s.Apply(shipment.Patch{
			Status:        statusPtr(shipment.DeliveryFailed),
			FailureReason: strPtr("refused at door"),
		}, now))

		require.NoError(t, s.Apply(shipment.Patch{Status: statusPtr(shipment.Returned)}, now))
		assert.Equal(t, shipment.Returned, s.Status())
		assert.True(t, s.Status().IsTerminal())
	})

	t.Run("terminal shipment rejects any further update", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)
		now := time.Now().UTC()

		require.NoError(t, s.Apply(shipment.Patch{
			Status:      statusPtr(shipment.Delivered),
			ProofImages: []string{"pod-1"},
		}, now))

		historyBefore := len(s.History())

		// Same-status no-op is rejected on terminal statuses
		err := s.Apply(shipment.Patch{Status: statusPtr(shipment.Delivered)}, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shipment.ErrInvalidTransition))

		// Metadata-only updates are rejected too
		err = s.Apply(shipment.Patch{Note: strPtr("late note")}, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shipment.ErrInvalidTransition))

		assert.Len(t, s.History(), historyBefore)
	})
}

func TestShipmentApply_ProofOfDeliveryRule(t *testing.T) {
	t.Run("should reject delivered without any evidence", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{Status: statusPtr(shipment.Delivered)}, time.Now().UTC())

		require.Error(t, err)
		assert.ErrorIs(t, err, shipment.ErrProofOfDeliveryRequired)
		assert.Equal(t, shipment.OutForDelivery, s.Status())
	})

	t.Run("should accept delivered with fresh proof image", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{
			Status:      statusPtr(shipment.Delivered),
			ProofImages: []string{"pod-1"},
		}, time.Now().UTC())

		require.NoError(t, err)
	})

	t.Run("should accept delivered with fresh signature", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{
			Status:    statusPtr(shipment.Delivered),
			Signature: strPtr("sig-1"),
		}, time.Now().UTC())

		require.NoError(t, err)
	})

	t.Run("blank signature does not count as evidence", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{
			Status:    statusPtr(shipment.Delivered),
			Signature: strPtr("   "),
		}, time.Now().UTC())

		require.Error(t, err)
		assert.ErrorIs(t, err, shipment.ErrProofOfDeliveryRequired)
	})

	t.Run("should accept delivered with previously stored evidence", func(t *testing.T) {
		s := newTestShipment(t)
		now := time.Now().UTC()

		// Upload evidence mid-flight, then deliver without fresh evidence
		require.NoError(t, s.Apply(shipment.Patch{
			Status:      statusPtr(shipment.PickedUp),
			ProofImages: []string{"early-pod"},
		}, now))
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{Status: statusPtr(shipment.Delivered)}, now)
		require.NoError(t, err)
	})
}

func TestShipmentApply_FailureReasonRule(t *testing.T) {
	t.Run("should reject delivery_failed without a reason", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{Status: statusPtr(shipment.DeliveryFailed)}, time.Now().UTC())

		require.Error(t, err)
		assert.ErrorIs(t, err, shipment.ErrFailureReasonRequired)
	})

	t.Run("should reject a blank reason", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{
			Status:        statusPtr(shipment.DeliveryFailed),
			FailureReason: strPtr("  \t "),
		}, time.Now().UTC())

		require.Error(t, err)
		assert.ErrorIs(t, err, shipment.ErrFailureReasonRequired)
	})

	t.Run("should record a trimmed reason", func(t *testing.T) {
		s := newTestShipment(t)
		advanceTo(t, s, shipment.OutForDelivery)

		err := s.Apply(shipment.Patch{
			Status:        statusPtr(shipment.DeliveryFailed),
			FailureReason: strPtr("  customer unavailable  "),
			FailureProofs: []string{"fail-1"},
		}, time.Now().UTC())

		require.NoError(t, err)
		assert.Equal(t, "customer unavailable", s.FailureReason())
		assert.Equal(t, []string{"fail-1"}, s.FailureProofs())
	})
}

func TestShipmentApply_MetadataOnlyUpdates(t *testing.T) {
	t.Run("should append history without changing status", func(t *testing.T) {
		s := newTestShipment(t)
		now := time.Now().UTC()

		err := s.Apply(shipment.Patch{Location: strPtr("Sorting hub")}, now)

		require.NoError(t, err)
		assert.Equal(t, shipment.Assigned, s.Status())
		assert.Equal(t, "Sorting hub", s.CurrentLocation())
		require.Len(t, s.History(), 1)
		assert.Equal(t, shipment.Assigned, s.History()[0].Status)
		assert.Equal(t, "Sorting hub", s.History()[0].Location)
		assert.Equal(t, now, s.History()[0].Timestamp)
		assert.Equal(t, 2, s.Version())
	})

	t.Run("explicit same-status update also appends history", func(t *testing.T) {
		s := newTestShipment(t)

		err := s.Apply(shipment.Patch{
			Status: statusPtr(shipment.Assigned),
			Note:   strPtr("rescheduled"),
		}, time.Now().UTC())

		require.NoError(t, err)
		assert.Equal(t, shipment.Assigned, s.Status())
		assert.Len(t, s.History(), 1)
		assert.Equal(t, "rescheduled", s.DeliveryNote())
	})

	t.Run("scalar fields overwrite, evidence appends", func(t *testing.T) {
		s := newTestShipment(t)
		now := time.Now().UTC()

		require.NoError(t, s.Apply(shipment.Patch{
			Status:      statusPtr(shipment.PickedUp),
			Location:    strPtr("A"),
			Note:        strPtr("first"),
			ProofImages: []string{"img-1"},
		}, now))
		require.NoError(t, s.Apply(shipment.Patch{
			Location:    strPtr("B"),
			Note:        strPtr("second"),
			ProofImages: []string{"img-2"},
		}, now))

		assert.Equal(t, "B", s.CurrentLocation())
		assert.Equal(t, "second", s.DeliveryNote())
		assert.Equal(t, []string{"img-1", "img-2"}, s.ProofOfDeliveryImages())
	})

	t.Run("should overwrite estimated delivery", func(t *testing.T) {
		s := newTestShipment(t)
		eta := time.Now().UTC().Add(6 * time.Hour)

		require.NoError(t, s.Apply(shipment.Patch{EstimatedDelivery: &eta}, time.Now().UTC()))

		require.NotNil(t, s.EstimatedDelivery())
		assert.Equal(t, eta, *s.EstimatedDelivery())
	})
}

func TestShipmentGettersReturnCopies(t *testing.T) {
	s := newTestShipment(t)
	now := time.Now().UTC()

	require.NoError(t, s.Apply(shipment.Patch{
		Status:      statusPtr(shipment.PickedUp),
		ProofImages: []string{"img-1"},
	}, now))

	history := s.History()
	history[0].Location = "tampered"
	assert.NotEqual(t, "tampered", s.History()[0].Location)

	images := s.ProofOfDeliveryImages()
	images[0] = "tampered"
	assert.Equal(t, []string{"img-1"}, s.ProofOfDeliveryImages())
}

func TestShipmentValidate(t *testing.T) {
	t.Run("constructed shipment is valid", func(t *testing.T) {
		s := newTestShipment(t)
		assert.NoError(t, s.Validate())
	})

	t.Run("zero-value shipment is invalid", func(t *testing.T) {
		var s shipment.Shipment
		assert.ErrorIs(t, s.Validate(), shipment.ErrShipmentIsNotConstructed)
	})

	t.Run("nil shipment is invalid", func(t *testing.T) {
		var s *shipment.Shipment
		assert.ErrorIs(t, s.Validate(), shipment.ErrShipmentIsNotConstructed)

		err := s.Apply(shipment.Patch{}, time.Now().UTC())
		assert.ErrorIs(t, err, shipment.ErrShipmentIsNotConstructed)
	})
}

func TestPatchHelpers(t *testing.T) {
	t.Run("HasProofEvidence", func(t *testing.T) {
		assert.False(t, shipment.Patch{}.HasProofEvidence())
		assert.True(t, shipment.Patch{ProofImages: []string{"x"}}.HasProofEvidence())
		assert.True(t, shipment.Patch{Signature: strPtr("sig")}.HasProofEvidence())
		assert.False(t, shipment.Patch{Signature: strPtr("  ")}.HasProofEvidence())
	})

	t.Run("HasFailureReason", func(t *testing.T) {
		assert.False(t, shipment.Patch{}.HasFailureReason())
		assert.False(t, shipment.Patch{FailureReason: strPtr(" ")}.HasFailureReason())
		assert.True(t, shipment.Patch{FailureReason: strPtr("reason")}.HasFailureReason())
	})

	t.Run("HasProofUpload", func(t *testing.T) {
		assert.False(t, shipment.Patch{}.HasProofUpload())
		assert.True(t, shipment.Patch{ProofImages: []string{"x"}}.HasProofUpload())
		assert.True(t, shipment.Patch{FailureProofs: []string{"x"}}.HasProofUpload())
	})
}
