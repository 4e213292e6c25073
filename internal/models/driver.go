package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriverStatus represents the duty state of a driver.
type DriverStatus string

const (
	DriverOnDuty    DriverStatus = "On Duty"
	DriverOffDuty   DriverStatus = "Off Duty"
	DriverSuspended DriverStatus = "Suspended"
)

// Driver represents a fleet driver. Trips reference drivers weakly:
// a trip keeps its driver id even after the driver record is removed.
type Driver struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	LicenseExpiry      time.Time          `bson:"license_expiry" json:"license_expiry"`
	SafetyScore        float64            `bson:"safety_score" json:"safety_score"`                   // informational, not guarded
	TripCompletionRate float64            `bson:"trip_completion_rate" json:"trip_completion_rate"` // informational, not guarded
	Status             DriverStatus       `bson:"status" json:"status"`
	Version            int64              `bson:"version" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// IsValidDriverStatus checks if a driver status is valid.
func IsValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverOnDuty, DriverOffDuty, DriverSuspended:
		return true
	default:
		return false
	}
}

// DriverCreateRequest represents a request to register a driver.
type DriverCreateRequest struct {
	Name          string    `json:"name" validate:"required,max=100"`
	LicenseExpiry time.Time `json:"license_expiry" validate:"required"`
}

// DriverUpdateRequest represents an administrative driver update.
type DriverUpdateRequest struct {
	Name          string       `json:"name" validate:"omitempty,max=100"`
	LicenseExpiry time.Time    `json:"license_expiry" validate:"omitempty"`
	Status        DriverStatus `json:"status" validate:"omitempty"`
}
