package db

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/fleetflow/internal/models"
)

// DashboardAnalytics computes all fleet KPIs in one call. This is a
// read-only consumer of committed state; it contains no lifecycle
// logic.
func (s *Store) DashboardAnalytics(ctx context.Context) (*models.DashboardAnalytics, error) {
	out := &models.DashboardAnalytics{}

	var err error
	if out.TotalVehicles, err = s.db.Collection(colVehicles).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if out.AvailableVehicles, err = s.countVehicles(ctx, models.VehicleAvailable); err != nil {
		return nil, err
	}
	if out.OnTripVehicles, err = s.countVehicles(ctx, models.VehicleOnTrip); err != nil {
		return nil, err
	}
	if out.InShopVehicles, err = s.countVehicles(ctx, models.VehicleInShop); err != nil {
		return nil, err
	}
	if out.TotalVehicles > 0 {
		out.FleetUtilization = round1(float64(out.OnTripVehicles) / float64(out.TotalVehicles) * 100)
	}

	if out.TotalDrivers, err = s.db.Collection(colDrivers).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if out.OnDutyDrivers, err = s.db.Collection(colDrivers).CountDocuments(ctx, bson.M{"status": models.DriverOnDuty}); err != nil {
		return nil, err
	}

	if out.TotalTrips, err = s.db.Collection(colTrips).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if out.ActiveTrips, err = s.db.Collection(colTrips).CountDocuments(ctx, bson.M{"status": models.TripDispatched}); err != nil {
		return nil, err
	}
	if out.CompletedTrips, err = s.db.Collection(colTrips).CountDocuments(ctx, bson.M{"status": models.TripCompleted}); err != nil {
		return nil, err
	}

	fuelCost, liters, err := s.sumFuel(ctx)
	if err != nil {
		return nil, err
	}
	maintCost, err := s.sumField(ctx, colMaintenance, "cost")
	if err != nil {
		return nil, err
	}
	out.TotalFuelCost = round2(fuelCost)
	out.TotalMaintenanceCost = round2(maintCost)
	out.TotalOperationalCost = round2(fuelCost + maintCost)

	if liters > 0 {
		km, err := s.completedTripDistance(ctx)
		if err != nil {
			return nil, err
		}
		eff := round2(km / liters)
		out.AvgFuelEfficiency = &eff
	}
	return out, nil
}

func (s *Store) countVehicles(ctx context.Context, status models.VehicleStatus) (int64, error) {
	return s.db.Collection(colVehicles).CountDocuments(ctx, bson.M{"status": status})
}

// sumFuel aggregates total fuel cost and liters.
func (s *Store) sumFuel(ctx context.Context) (cost, liters float64, err error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":    nil,
			"cost":   bson.M{"$sum": "$cost"},
			"liters": bson.M{"$sum": "$liters"},
		}},
	}
	cursor, err := s.db.Collection(colFuelLogs).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)
	var results []struct {
		Cost   float64 `bson:"cost"`
		Liters float64 `bson:"liters"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Cost, results[0].Liters, nil
}

func (s *Store) sumField(ctx context.Context, collection, field string) (float64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$" + field}}},
	}
	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)
	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

// completedTripDistance sums end-start odometer deltas over completed
// trips that carry an end reading.
func (s *Store) completedTripDistance(ctx context.Context) (float64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"status": models.TripCompleted, "end_odometer": bson.M{"$ne": nil}}},
		{"$group": bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$subtract": []string{"$end_odometer", "$start_odometer"}}},
		}},
	}
	cursor, err := s.db.Collection(colTrips).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)
	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
