package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaintenanceLog represents a vehicle maintenance record. The record
// itself is a fact, not a state machine, but logging one forces the
// vehicle into the In Shop status.
type MaintenanceLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID   string             `bson:"vehicle_id" json:"vehicle_id"`
	ServiceType string             `bson:"service_type" json:"service_type"` // "oil_change", "tire_rotation", "brake_service", "inspection", ...
	Cost        float64            `bson:"cost" json:"cost"` // in USD
	Date        time.Time          `bson:"date" json:"date"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// MaintenanceCreateRequest represents a request to log maintenance.
type MaintenanceCreateRequest struct {
	VehicleID   string    `json:"vehicle_id" validate:"required"`
	ServiceType string    `json:"service_type" validate:"required,max=100"`
	Cost        float64   `json:"cost" validate:"gte=0"`
	Date        time.Time `json:"date" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=500"`
}
