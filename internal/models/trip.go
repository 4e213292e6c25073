package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripStatus represents where a trip is in its lifecycle.
type TripStatus string

const (
	TripDraft      TripStatus = "Draft"
	TripDispatched TripStatus = "Dispatched"
	TripCompleted  TripStatus = "Completed"
	TripCancelled  TripStatus = "Cancelled"
)

// Trip represents a cargo trip assigned to one vehicle and one driver.
// Once Completed or Cancelled a trip is immutable.
type Trip struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID     string             `bson:"vehicle_id" json:"vehicle_id"`
	DriverID      string             `bson:"driver_id" json:"driver_id"` // weak reference, survives driver deletion
	CargoWeight   float64            `bson:"cargo_weight" json:"cargo_weight"` // in kilograms
	StartOdometer float64            `bson:"start_odometer" json:"start_odometer"`
	EndOdometer   *float64           `bson:"end_odometer,omitempty" json:"end_odometer,omitempty"`
	Status        TripStatus         `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// TripCreateRequest represents a request to create a Draft trip.
type TripCreateRequest struct {
	VehicleID     string   `json:"vehicle_id" validate:"required"`
	DriverID      string   `json:"driver_id" validate:"required"`
	CargoWeight   float64  `json:"cargo_weight" validate:"required,gt=0"`
	StartOdometer *float64 `json:"start_odometer,omitempty" validate:"omitempty,gte=0"`
}

// TripCompleteRequest carries the closing odometer reading.
type TripCompleteRequest struct {
	EndOdometer float64 `json:"end_odometer" validate:"gte=0"`
}
