package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FuelLog represents a refuelling event for a vehicle.
type FuelLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	Liters    float64            `bson:"liters" json:"liters"`
	Cost      float64            `bson:"cost" json:"cost"` // in USD
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Expense represents a miscellaneous vehicle expense (tolls,
// insurance, registration and the like).
type Expense struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id"`
	Type      string             `bson:"type" json:"type"`
	Amount    float64            `bson:"amount" json:"amount"` // in USD
	Date      time.Time          `bson:"date" json:"date"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// FuelLogCreateRequest represents a request to log a refuelling.
type FuelLogCreateRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required"`
	Liters    float64   `json:"liters" validate:"required,gt=0"`
	Cost      float64   `json:"cost" validate:"gte=0"`
	Date      time.Time `json:"date" validate:"required"`
}

// ExpenseCreateRequest represents a request to log an expense.
type ExpenseCreateRequest struct {
	VehicleID string    `json:"vehicle_id" validate:"required"`
	Type      string    `json:"type" validate:"required,max=100"`
	Amount    float64   `json:"amount" validate:"gte=0"`
	Date      time.Time `json:"date" validate:"required"`
}
