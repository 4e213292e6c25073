package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/fleetflow/internal/models"
)

// GetDriver finds a driver by its id.
func (s *Store) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	oid, err := objectID("driver", id)
	if err != nil {
		return nil, err
	}
	var d models.Driver
	if err := s.db.Collection(colDrivers).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, wrapNotFound(err, "driver", id)
	}
	return &d, nil
}

// InsertDriver inserts a driver record.
func (s *Store) InsertDriver(ctx context.Context, d *models.Driver) error {
	d.CreatedAt = time.Now()
	if d.Status == "" {
		d.Status = models.DriverOffDuty
	}
	if d.SafetyScore == 0 {
		d.SafetyScore = 100
	}
	if d.TripCompletionRate == 0 {
		d.TripCompletionRate = 100
	}
	res, err := s.db.Collection(colDrivers).InsertOne(ctx, d)
	if err != nil {
		return err
	}
	d.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// SaveDriver persists a mutated driver under the same optimistic
// version check as SaveVehicle.
func (s *Store) SaveDriver(ctx context.Context, d *models.Driver) error {
	res, err := s.db.Collection(colDrivers).UpdateOne(ctx,
		bson.M{"_id": d.ID, "version": d.Version},
		bson.M{
			"$set": bson.M{
				"name":                 d.Name,
				"license_expiry":       d.LicenseExpiry,
				"safety_score":         d.SafetyScore,
				"trip_completion_rate": d.TripCompletionRate,
				"status":               d.Status,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	d.Version++
	return nil
}

// ListDrivers returns all drivers.
func (s *Store) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	cursor, err := s.db.Collection(colDrivers).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// DeleteDriver removes a driver record. Trips that reference the
// driver keep their driver_id; the reference is weak.
func (s *Store) DeleteDriver(ctx context.Context, id string) error {
	oid, err := objectID("driver", id)
	if err != nil {
		return err
	}
	res, err := s.db.Collection(colDrivers).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return wrapNotFound(mongo.ErrNoDocuments, "driver", id)
	}
	return nil
}
