package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit event names.
const (
	AuditEventLogin               = "Login"
	AuditEventRegistration        = "Registration"
	AuditEventFailedLogin         = "Failed Login"
	AuditEventMaintenanceOverride = "Maintenance Override"
)

// Audit outcome values.
const (
	AuditStatusSuccess = "Success"
	AuditStatusFailure = "Failure"
)

// AuditLog represents a security or lifecycle audit trail entry.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Event     string             `bson:"event" json:"event"`
	Status    string             `bson:"status" json:"status"`
	Detail    string             `bson:"detail,omitempty" json:"detail,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
