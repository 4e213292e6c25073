package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus represents the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "Available"
	VehicleOnTrip    VehicleStatus = "On Trip"
	VehicleInShop    VehicleStatus = "In Shop"
	VehicleRetired   VehicleStatus = "Retired"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	LicensePlate string             `bson:"license_plate" json:"license_plate"`
	MaxCapacity  float64            `bson:"max_capacity" json:"max_capacity"` // in kilograms
	Odometer     float64            `bson:"odometer" json:"odometer"`         // in kilometers, advanced on trip completion only
	Status       VehicleStatus      `bson:"status" json:"status"`
	Version      int64              `bson:"version" json:"-"` // optimistic lock, bumped on every save
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidVehicleStatus checks if a vehicle status is valid.
func IsValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleAvailable, VehicleOnTrip, VehicleInShop, VehicleRetired:
		return true
	default:
		return false
	}
}

// VehicleCreateRequest represents a request to register a vehicle.
type VehicleCreateRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	LicensePlate string  `json:"license_plate" validate:"required,max=20"`
	MaxCapacity  float64 `json:"max_capacity" validate:"required,gt=0"`
	Odometer     float64 `json:"odometer" validate:"gte=0"`
}

// VehicleUpdateRequest represents an administrative vehicle update.
// Status edits here are administrative (e.g. retiring a vehicle);
// trip-driven status changes go through the lifecycle controller.
type VehicleUpdateRequest struct {
	Name         string        `json:"name" validate:"omitempty,max=100"`
	LicensePlate string        `json:"license_plate" validate:"omitempty,max=20"`
	MaxCapacity  float64       `json:"max_capacity" validate:"omitempty,gt=0"`
	Status       VehicleStatus `json:"status" validate:"omitempty"`
}
