package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetflow/internal/lifecycle"
)

// Collection names.
const (
	colVehicles    = "vehicles"
	colDrivers     = "drivers"
	colTrips       = "trips"
	colMaintenance = "maintenance_logs"
	colFuelLogs    = "fuel_logs"
	colExpenses    = "expenses"
	colAuditLogs   = "audit_logs"
	colUsers       = "users"
)

// ErrVersionConflict is returned when an optimistic-locked save loses
// against a concurrent writer.
var ErrVersionConflict = errors.New("version conflict")

// Connect connects to MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Store is the MongoDB-backed resource store. It implements
// lifecycle.Store; transactions use multi-document sessions, and
// Vehicle/Driver saves carry an optimistic version check so guard
// reads can never be overtaken unnoticed by a concurrent transition.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore creates a Store over the named database.
func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// WithTransaction runs fn inside a session transaction. fn's error
// aborts the transaction and is returned unchanged.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique and lookup indexes the store
// relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := s.db.Collection(colVehicles).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    map[string]interface{}{"license_plate": 1},
		Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    map[string]interface{}{"email": 1},
		Options: unique,
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colTrips).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: map[string]interface{}{"vehicle_id": 1},
	})
	return err
}

// objectID parses a hex id, reporting an unparseable id the same way
// as a missing document.
func objectID(kind, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s id '%s': %w", kind, id, lifecycle.ErrEntityNotFound)
	}
	return oid, nil
}

// wrapNotFound converts the driver's no-documents error into the
// store contract's sentinel.
func wrapNotFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s '%s': %w", kind, id, lifecycle.ErrEntityNotFound)
	}
	return err
}
