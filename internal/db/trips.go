package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetflow/internal/models"
)

// GetTrip finds a trip by its id.
func (s *Store) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	oid, err := objectID("trip", id)
	if err != nil {
		return nil, err
	}
	var t models.Trip
	if err := s.db.Collection(colTrips).FindOne(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		return nil, wrapNotFound(err, "trip", id)
	}
	return &t, nil
}

// InsertTrip inserts a trip record.
func (s *Store) InsertTrip(ctx context.Context, t *models.Trip) error {
	res, err := s.db.Collection(colTrips).InsertOne(ctx, t)
	if err != nil {
		return err
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// SaveTrip persists a mutated trip.
func (s *Store) SaveTrip(ctx context.Context, t *models.Trip) error {
	_, err := s.db.Collection(colTrips).UpdateOne(ctx,
		bson.M{"_id": t.ID},
		bson.M{"$set": bson.M{
			"cargo_weight":   t.CargoWeight,
			"start_odometer": t.StartOdometer,
			"end_odometer":   t.EndOdometer,
			"status":         t.Status,
			"updated_at":     t.UpdatedAt,
		}})
	return err
}

// ListTrips returns trips, optionally filtered by status, newest
// first.
func (s *Store) ListTrips(ctx context.Context, status models.TripStatus) ([]models.Trip, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := s.db.Collection(colTrips).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}
