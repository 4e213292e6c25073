package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleetflow/internal/models"
)

// GetVehicle finds a vehicle by its id.
func (s *Store) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	oid, err := objectID("vehicle", id)
	if err != nil {
		return nil, err
	}
	var v models.Vehicle
	if err := s.db.Collection(colVehicles).FindOne(ctx, bson.M{"_id": oid}).Decode(&v); err != nil {
		return nil, wrapNotFound(err, "vehicle", id)
	}
	return &v, nil
}

// InsertVehicle inserts a vehicle record.
func (s *Store) InsertVehicle(ctx context.Context, v *models.Vehicle) error {
	v.CreatedAt = time.Now()
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	res, err := s.db.Collection(colVehicles).InsertOne(ctx, v)
	if err != nil {
		return err
	}
	v.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// SaveVehicle persists a mutated vehicle. The update is guarded by
// the version read within the current transaction: a concurrent
// writer that committed first makes this save fail with
// ErrVersionConflict instead of silently overwriting.
func (s *Store) SaveVehicle(ctx context.Context, v *models.Vehicle) error {
	res, err := s.db.Collection(colVehicles).UpdateOne(ctx,
		bson.M{"_id": v.ID, "version": v.Version},
		bson.M{
			"$set": bson.M{
				"name":          v.Name,
				"license_plate": v.LicensePlate,
				"max_capacity":  v.MaxCapacity,
				"odometer":      v.Odometer,
				"status":        v.Status,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	v.Version++
	return nil
}

// ListVehicles returns all vehicles.
func (s *Store) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	cursor, err := s.db.Collection(colVehicles).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// DeleteVehicleCascade deletes a vehicle and, in the same
// transaction, every trip, maintenance log, fuel log and expense that
// references it. The vehicle owns those records.
func (s *Store) DeleteVehicleCascade(ctx context.Context, id string) error {
	oid, err := objectID("vehicle", id)
	if err != nil {
		return err
	}
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		res, err := s.db.Collection(colVehicles).DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return wrapNotFound(mongo.ErrNoDocuments, "vehicle", id)
		}
		ref := bson.M{"vehicle_id": id}
		for _, col := range []string{colTrips, colMaintenance, colFuelLogs, colExpenses} {
			if _, err := s.db.Collection(col).DeleteMany(ctx, ref); err != nil {
				return err
			}
		}
		return nil
	})
}
