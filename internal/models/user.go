package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system.
type Role string

const (
	RoleManager    Role = "Manager"
	RoleDispatcher Role = "Dispatcher"
	RoleSafety     Role = "Safety"
	RoleAnalyst    Role = "Analyst"
)

// Capability is a closed set of actions a role may perform. Routes
// declare the capability they need; roles map onto capability sets
// in one place instead of per-route role lists.
type Capability string

const (
	CapManageFleet       Capability = "fleet:manage"
	CapDispatch          Capability = "trips:dispatch"
	CapRecordMaintenance Capability = "maintenance:write"
	CapRecordFinance     Capability = "finance:write"
	CapViewFleet         Capability = "fleet:view"
	CapViewAnalytics     Capability = "analytics:view"
	CapViewAudit         Capability = "audit:view"
	CapManageUsers       Capability = "users:manage"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleManager: {
		CapManageFleet:       true,
		CapDispatch:          true,
		CapRecordMaintenance: true,
		CapRecordFinance:     true,
		CapViewFleet:         true,
		CapViewAnalytics:     true,
		CapViewAudit:         true,
		CapManageUsers:       true,
	},
	RoleDispatcher: {
		CapDispatch:          true,
		CapRecordMaintenance: true,
		CapRecordFinance:     true,
		CapViewFleet:         true,
	},
	RoleSafety: {
		CapViewFleet: true,
		CapViewAudit: true,
	},
	RoleAnalyst: {
		CapViewFleet:     true,
		CapViewAnalytics: true,
	},
}

// Can reports whether the role grants the given capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// IsValidRole checks if a role is valid.
func IsValidRole(role Role) bool {
	switch role {
	case RoleManager, RoleDispatcher, RoleSafety, RoleAnalyst:
		return true
	default:
		return false
	}
}

// User represents an operator account in the system.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Claims represents validated JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Exp    int64  `json:"exp"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     Role   `json:"role" validate:"required"`
}

// LoginResponse represents a successful login response.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
