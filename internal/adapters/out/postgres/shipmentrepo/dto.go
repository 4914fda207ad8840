// Package shipmentrepo provides data transfer objects and mapping functions for shipment persistence.
// This package implements the repository pattern for the shipment tracking aggregate, handling
// the conversion between domain entities and database representations.
package shipmentrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shipment"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ShipmentDTO represents the database structure for persisting shipment aggregates.
// One row per order: order_id is the primary key because exactly one tracking
// record exists per order. The tracking history lives in a jsonb column since
// it is append-only and always read as a whole; evidence references use
// PostgreSQL text arrays.
type ShipmentDTO struct {
	OrderID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ShipperID             uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status                int            `gorm:"type:int;not null"`
	CurrentLocation       string         `gorm:"type:varchar(512)"`
	TrackingHistory       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ProofOfDeliveryImages pq.StringArray `gorm:"type:text[]"`
	CustomerSignature     string         `gorm:"type:text"`
	DeliveryNote          string         `gorm:"type:varchar(1024)"`
	EstimatedDelivery     *time.Time     `gorm:"type:timestamptz"`
	DeliveryFailedReason  string         `gorm:"type:varchar(1024)"`
	DeliveryFailedProofs  pq.StringArray `gorm:"type:text[]"`
	Version               int            `gorm:"type:int;not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TableName specifies the database table name for shipment entities.
// Overrides GORM's default naming convention to use "shipments" instead of "shipment_dtos".
func (ShipmentDTO) TableName() string {
	return "shipments"
}

// historyEntryDTO is the jsonb representation of one tracking history entry.
// Statuses are stored by their string value so the history stays readable in
// the database and stable across any renumbering of the status enum.
type historyEntryDTO struct {
	Status    string    `json:"status"`
	Location  string    `json:"location,omitempty"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// fromDomain converts a shipment domain aggregate to its database representation.
func fromDomain(aggregate *shipment.Shipment) (ShipmentDTO, error) {
	history := make([]historyEntryDTO, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		history = append(history, historyEntryDTO{
			Status:    entry.Status.String(),
			Location:  entry.Location,
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		})
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return ShipmentDTO{}, err
	}

	return ShipmentDTO{
		OrderID:               aggregate.OrderID().Bytes(),
		ShipperID:             aggregate.ShipperID().Bytes(),
		Status:                int(aggregate.Status()),
		CurrentLocation:       aggregate.CurrentLocation(),
		TrackingHistory:       historyJSON,
		ProofOfDeliveryImages: aggregate.ProofOfDeliveryImages(),
		CustomerSignature:     aggregate.CustomerSignature(),
		DeliveryNote:          aggregate.DeliveryNote(),
		EstimatedDelivery:     aggregate.EstimatedDelivery(),
		DeliveryFailedReason:  aggregate.FailureReason(),
		DeliveryFailedProofs:  aggregate.FailureProofs(),
		Version:               aggregate.Version(),
	}, nil
}

// toDomain converts a database DTO to a shipment domain aggregate.
// Reconstructs the complete aggregate including the tracking history using RestoreShipment.
func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	shipperID, err := kernel.UUIDFromBytes(dto.ShipperID[:])
	if err != nil {
		return nil, err
	}

	var historyDTOs []historyEntryDTO
	if len(dto.TrackingHistory) > 0 {
		if err = json.Unmarshal(dto.TrackingHistory, &historyDTOs); err != nil {
			return nil, err
		}
	}

	history := make([]shipment.HistoryEntry, 0, len(historyDTOs))
	for _, entry := range historyDTOs {
		status, statusErr := shipment.StatusFromString(entry.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		history = append(history, shipment.HistoryEntry{
			Status:    status,
			Location:  entry.Location,
			Note:      entry.Note,
			Timestamp: entry.Timestamp,
		})
	}

	return shipment.RestoreShipment(
		orderID,
		shipperID,
		shipment.Status(dto.Status),
		dto.CurrentLocation,
		history,
		dto.ProofOfDeliveryImages,
		dto.CustomerSignature,
		dto.DeliveryNote,
		dto.EstimatedDelivery,
		dto.DeliveryFailedReason,
		dto.DeliveryFailedProofs,
		dto.Version,
	)
}
