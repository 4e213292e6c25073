package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetflow/internal/models"
)

// InsertMaintenance inserts a maintenance log record.
func (s *Store) InsertMaintenance(ctx context.Context, m *models.MaintenanceLog) error {
	res, err := s.db.Collection(colMaintenance).InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListMaintenance returns maintenance logs, optionally for one
// vehicle, newest first.
func (s *Store) ListMaintenance(ctx context.Context, vehicleID string) ([]models.MaintenanceLog, error) {
	filter := bson.M{}
	if vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := s.db.Collection(colMaintenance).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var logs []models.MaintenanceLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
