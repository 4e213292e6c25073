package lifecycle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/events"
	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/models"
)

var testClock = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, check lifecycle.OdometerCheck) (*lifecycle.Controller, *db.MemStore) {
	t.Helper()
	store := db.NewMemStore()
	ctrl := lifecycle.NewController(store, events.NopPublisher{}, check)
	ctrl.Now = func() time.Time { return testClock }
	return ctrl, store
}

func seedVehicle(t *testing.T, store *db.MemStore, status models.VehicleStatus, capacity, odometer float64) string {
	t.Helper()
	v := &models.Vehicle{
		Name:        "Test Truck",
		MaxCapacity: capacity,
		Odometer:    odometer,
		Status:      status,
	}
	require.NoError(t, store.InsertVehicle(context.Background(), v))
	return v.ID.Hex()
}

func seedDriver(t *testing.T, store *db.MemStore, status models.DriverStatus, expiry time.Time) string {
	t.Helper()
	d := &models.Driver{
		Name:          "Test Driver",
		LicenseExpiry: expiry,
		Status:        status,
	}
	require.NoError(t, store.InsertDriver(context.Background(), d))
	return d.ID.Hex()
}

func createDraft(t *testing.T, ctrl *lifecycle.Controller, vehicleID, driverID string, cargo float64) *models.Trip {
	t.Helper()
	trip, err := ctrl.CreateTrip(context.Background(), lifecycle.CreateTripInput{
		VehicleID:   vehicleID,
		DriverID:    driverID,
		CargoWeight: cargo,
	})
	require.NoError(t, err)
	require.Equal(t, models.TripDraft, trip.Status)
	return trip
}

func TestCreateTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 5000)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))

	trip, err := ctrl.CreateTrip(ctx, lifecycle.CreateTripInput{
		VehicleID:   vehicleID,
		DriverID:    driverID,
		CargoWeight: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TripDraft, trip.Status)
	assert.Equal(t, float64(0), trip.StartOdometer)
	assert.Nil(t, trip.EndOdometer)
	assert.False(t, trip.ID.IsZero())

	// Creating a draft must not touch the vehicle or driver.
	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverOffDuty, driver.Status)
}

func TestCreateTripCapacityExceeded(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))

	_, err := ctrl.CreateTrip(context.Background(), lifecycle.CreateTripInput{
		VehicleID:   vehicleID,
		DriverID:    driverID,
		CargoWeight: 1200,
	})
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeCapacityExceeded, lifecycle.CodeOf(err))
	assert.Equal(t, 0, store.DispatchedTripsFor(vehicleID, ""))
}

func TestCreateTripExpiredLicense(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(0, 0, -1))

	_, err := ctrl.CreateTrip(context.Background(), lifecycle.CreateTripInput{
		VehicleID:   vehicleID,
		DriverID:    driverID,
		CargoWeight: 500,
	})
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeLicenseExpired, lifecycle.CodeOf(err))
}

func TestCreateTripUnknownVehicle(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))

	_, err := ctrl.CreateTrip(context.Background(), lifecycle.CreateTripInput{
		VehicleID:   "64b000000000000000000000",
		DriverID:    driverID,
		CargoWeight: 500,
	})
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeNotFound, lifecycle.CodeOf(err))
}

func TestDispatchTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 12345)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	trip, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripDispatched, trip.Status)
	assert.Equal(t, float64(12345), trip.StartOdometer, "start odometer snapshots the vehicle reading")

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleOnTrip, vehicle.Status)
	assert.Equal(t, float64(12345), vehicle.Odometer, "dispatch never advances the odometer")

	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverOnDuty, driver.Status)
}

func TestDispatchGuardOrder(t *testing.T) {
	// Vehicle and driver are both unavailable; the vehicle guard runs
	// first, so its failure is the one reported.
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	ctx := context.Background()
	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	vehicle.Status = models.VehicleInShop
	require.NoError(t, store.SaveVehicle(ctx, vehicle))

	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	driver.Status = models.DriverSuspended
	require.NoError(t, store.SaveDriver(ctx, driver))

	_, err = ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeVehicleUnavailable, lifecycle.CodeOf(err))
}

func TestDispatchDriverUnavailable(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	driver.Status = models.DriverOnDuty
	require.NoError(t, store.SaveDriver(ctx, driver))

	_, err = ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeDriverUnavailable, lifecycle.CodeOf(err))

	// Nothing committed: vehicle still Available, trip still Draft.
	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
	trip, err := store.GetTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripDraft, trip.Status)
}

func TestDispatchLicenseExpiredAfterCreation(t *testing.T) {
	// The license was valid when the draft was created but expires
	// before dispatch. Dispatch re-validates against current state.
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(0, 0, 1))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	ctrl.Now = func() time.Time { return testClock.AddDate(0, 0, 2) }

	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeLicenseExpired, lifecycle.CodeOf(err))

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverOffDuty, driver.Status)
}

func TestDispatchNonDraftTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	_, err = ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeInvalidTransition, lifecycle.CodeOf(err))
}

func TestCompleteTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 10000)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	trip, err := ctrl.CompleteTrip(ctx, draft.ID.Hex(), 10350)
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, trip.Status)
	require.NotNil(t, trip.EndOdometer)
	assert.Equal(t, float64(10350), *trip.EndOdometer)

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
	assert.Equal(t, float64(10350), vehicle.Odometer, "completion advances the odometer")

	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverOffDuty, driver.Status)
}

func TestCompleteDraftTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	_, err := ctrl.CompleteTrip(context.Background(), draft.ID.Hex(), 100)
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeInvalidTransition, lifecycle.CodeOf(err))
}

func TestCompleteOdometerRegressionRejected(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerReject)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 10000)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	_, err = ctrl.CompleteTrip(ctx, draft.ID.Hex(), 9000)
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeOdometerRegression, lifecycle.CodeOf(err))

	// The rejection rolled everything back.
	trip, err := store.GetTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripDispatched, trip.Status)
	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleOnTrip, vehicle.Status)
	assert.Equal(t, float64(10000), vehicle.Odometer)
}

func TestCompleteOdometerRegressionWarnMode(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 10000)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	trip, err := ctrl.CompleteTrip(ctx, draft.ID.Hex(), 9000)
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, trip.Status)

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, float64(9000), vehicle.Odometer, "warn mode records the reading as given")
}

func TestCancelDraftTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)

	trip, err := ctrl.CancelTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripCancelled, trip.Status)

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
}

func TestCancelDispatchedTrip(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 7777)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	trip, err := ctrl.CancelTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripCancelled, trip.Status)
	assert.Nil(t, trip.EndOdometer)

	vehicle, err := store.GetVehicle(ctx, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, vehicle.Status)
	assert.Equal(t, float64(7777), vehicle.Odometer, "cancel never touches the odometer")

	driver, err := store.GetDriver(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverOffDuty, driver.Status)
}

func TestTerminalTripsAreImmutable(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))

	cancelled := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.CancelTrip(ctx, cancelled.ID.Hex())
	require.NoError(t, err)

	completed := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err = ctrl.DispatchTrip(ctx, completed.ID.Hex())
	require.NoError(t, err)
	_, err = ctrl.CompleteTrip(ctx, completed.ID.Hex(), 100)
	require.NoError(t, err)

	for _, id := range []string{cancelled.ID.Hex(), completed.ID.Hex()} {
		_, err = ctrl.DispatchTrip(ctx, id)
		assert.Equal(t, lifecycle.CodeInvalidTransition, lifecycle.CodeOf(err))
		_, err = ctrl.CompleteTrip(ctx, id, 200)
		assert.Equal(t, lifecycle.CodeInvalidTransition, lifecycle.CodeOf(err))
		_, err = ctrl.CancelTrip(ctx, id)
		assert.Equal(t, lifecycle.CodeInvalidTransition, lifecycle.CodeOf(err))
	}
}

func TestCompleteTripWithDeletedDriver(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	// Trips hold a weak driver reference: deleting the driver must not
	// block completion.
	require.NoError(t, store.DeleteDriver(ctx, driverID))

	trip, err := ctrl.CompleteTrip(ctx, draft.ID.Hex(), 500)
	require.NoError(t, err)
	assert.Equal(t, models.TripCompleted, trip.Status)
	assert.Equal(t, driverID, trip.DriverID, "the dangling driver id is preserved")
}

func TestConcurrentDispatchSameVehicle(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverA := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	driverB := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))

	tripA := createDraft(t, ctrl, vehicleID, driverA, 500)
	tripB := createDraft(t, ctrl, vehicleID, driverB, 500)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{tripA.ID.Hex(), tripB.ID.Hex()} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = ctrl.DispatchTrip(ctx, id)
		}(i, id)
	}
	wg.Wait()

	var successes, unavailable int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case lifecycle.CodeOf(err) == lifecycle.CodeVehicleUnavailable:
			unavailable++
		default:
			t.Fatalf("unexpected dispatch error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one dispatch wins the vehicle")
	assert.Equal(t, 1, unavailable, "the loser is rejected by the availability guard")
	assert.Equal(t, 1, store.DispatchedTripsFor(vehicleID, ""))
}

func TestRecordMaintenance(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)

	entry, vehicle, err := ctrl.RecordMaintenance(ctx, lifecycle.RecordMaintenanceInput{
		VehicleID:   vehicleID,
		ServiceType: "brake_service",
		Cost:        320,
		Date:        testClock,
		ActorID:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VehicleInShop, vehicle.Status)
	assert.False(t, entry.ID.IsZero())

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Equal(t, models.AuditEventMaintenanceOverride, audits[0].Event)
	assert.Equal(t, "user-1", audits[0].UserID)
	assert.Contains(t, audits[0].Detail, "Available")
}

func TestRecordMaintenanceOverridesDispatchedVehicle(t *testing.T) {
	ctrl, store := newTestController(t, lifecycle.OdometerWarn)
	ctx := context.Background()
	vehicleID := seedVehicle(t, store, models.VehicleAvailable, 1000, 0)
	driverID := seedDriver(t, store, models.DriverOffDuty, testClock.AddDate(1, 0, 0))
	draft := createDraft(t, ctrl, vehicleID, driverID, 800)
	_, err := ctrl.DispatchTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)

	_, vehicle, err := ctrl.RecordMaintenance(ctx, lifecycle.RecordMaintenanceInput{
		VehicleID:   vehicleID,
		ServiceType: "inspection",
		Cost:        100,
		Date:        testClock,
		ActorID:     "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VehicleInShop, vehicle.Status, "maintenance wins unconditionally")

	// The dispatched trip is left as-is; the override is surfaced in
	// the audit trail rather than silently resolved.
	trip, err := store.GetTrip(ctx, draft.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.TripDispatched, trip.Status)

	audits := store.AuditLogs()
	require.Len(t, audits, 1)
	assert.Contains(t, audits[0].Detail, string(models.VehicleOnTrip))
}

func TestRecordMaintenanceUnknownVehicle(t *testing.T) {
	ctrl, _ := newTestController(t, lifecycle.OdometerWarn)

	_, _, err := ctrl.RecordMaintenance(context.Background(), lifecycle.RecordMaintenanceInput{
		VehicleID:   "64b000000000000000000000",
		ServiceType: "inspection",
		Cost:        100,
		Date:        testClock,
	})
	require.Error(t, err)
	assert.Equal(t, lifecycle.CodeNotFound, lifecycle.CodeOf(err))
}
