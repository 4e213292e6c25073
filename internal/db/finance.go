package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/fleetflow/internal/models"
)

// InsertFuelLog inserts a fuel log record.
func (s *Store) InsertFuelLog(ctx context.Context, f *models.FuelLog) error {
	f.CreatedAt = time.Now()
	res, err := s.db.Collection(colFuelLogs).InsertOne(ctx, f)
	if err != nil {
		return err
	}
	f.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListFuelLogs returns fuel logs, optionally for one vehicle.
func (s *Store) ListFuelLogs(ctx context.Context, vehicleID string) ([]models.FuelLog, error) {
	filter := bson.M{}
	if vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	opts := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := s.db.Collection(colFuelLogs).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var logs []models.FuelLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// InsertExpense inserts an expense record.
func (s *Store) InsertExpense(ctx context.Context, e *models.Expense) error {
	e.CreatedAt = time.Now()
	res, err := s.db.Collection(colExpenses).InsertOne(ctx, e)
	if err != nil {
		return err
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ListExpenses returns expenses, optionally for one vehicle.
func (s *Store) ListExpenses(ctx context.Context, vehicleID string) ([]models.Expense, error) {
	filter := bson.M{}
	if vehicleID != "" {
		filter["vehicle_id"] = vehicleID
	}
	opts := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := s.db.Collection(colExpenses).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var expenses []models.Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}
