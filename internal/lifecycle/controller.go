package lifecycle

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetflow/internal/metrics"
	"github.com/ukydev/fleetflow/internal/models"
)

// Store is the transactional resource store the controller runs
// against. Get* methods return ErrEntityNotFound (possibly wrapped)
// when an id does not resolve. WithTransaction executes fn as one
// atomic unit: either every mutation inside commits, or none do.
type Store interface {
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	GetTrip(ctx context.Context, id string) (*models.Trip, error)
	InsertTrip(ctx context.Context, trip *models.Trip) error
	InsertMaintenance(ctx context.Context, m *models.MaintenanceLog) error
	InsertAuditLog(ctx context.Context, entry *models.AuditLog) error
	SaveVehicle(ctx context.Context, v *models.Vehicle) error
	SaveDriver(ctx context.Context, d *models.Driver) error
	SaveTrip(ctx context.Context, t *models.Trip) error
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher receives lifecycle events after they have committed.
type Publisher interface {
	PublishTripEvent(ctx context.Context, event string, trip *models.Trip)
	PublishMaintenanceOverride(ctx context.Context, vehicleID, maintenanceID string, prior models.VehicleStatus)
}

// OdometerCheck selects how a regressing end odometer is handled on
// trip completion.
type OdometerCheck string

const (
	OdometerWarn   OdometerCheck = "warn" // log and proceed
	OdometerReject OdometerCheck = "reject"
	OdometerOff    OdometerCheck = "off"
)

// Controller is the public entry point for trip lifecycle operations
// and the maintenance trigger. Every operation is one store
// transaction: guards run over freshly read snapshots, then all
// linked mutations commit together or not at all.
type Controller struct {
	store         Store
	pub           Publisher
	odometerCheck OdometerCheck

	// Now is the clock used for license checks and timestamps.
	// Overridable in tests.
	Now func() time.Time
}

// NewController creates a lifecycle controller.
func NewController(store Store, pub Publisher, odometerCheck OdometerCheck) *Controller {
	if odometerCheck == "" {
		odometerCheck = OdometerWarn
	}
	return &Controller{
		store:         store,
		pub:           pub,
		odometerCheck: odometerCheck,
		Now:           time.Now,
	}
}

// CreateTripInput is the input for CreateTrip.
type CreateTripInput struct {
	VehicleID     string
	DriverID      string
	CargoWeight   float64
	StartOdometer *float64
}

// RecordMaintenanceInput is the input for RecordMaintenance.
type RecordMaintenanceInput struct {
	VehicleID   string
	ServiceType string
	Cost        float64
	Date        time.Time
	Notes       string
	ActorID     string // user recording the event, for the audit trail
}

// CreateTrip creates a trip in Draft status. Capacity and license are
// validated up front as a pre-flight check; dispatch re-validates
// against current state since entities may have changed in between.
func (c *Controller) CreateTrip(ctx context.Context, in CreateTripInput) (*models.Trip, error) {
	var trip *models.Trip
	err := c.transact(ctx, "create", func(ctx context.Context) error {
		vehicle, err := c.getVehicle(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		driver, err := c.getDriver(ctx, in.DriverID)
		if err != nil {
			return err
		}

		if gerr := CapacityGuard(in.CargoWeight, vehicle); gerr != nil {
			return c.guardFailed(gerr)
		}
		if gerr := LicenseGuard(driver, c.today()); gerr != nil {
			return c.guardFailed(gerr)
		}

		now := c.Now()
		trip = &models.Trip{
			VehicleID:   in.VehicleID,
			DriverID:    in.DriverID,
			CargoWeight: in.CargoWeight,
			Status:      models.TripDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if in.StartOdometer != nil {
			trip.StartOdometer = *in.StartOdometer
		}
		return c.store.InsertTrip(ctx, trip)
	})
	if err != nil {
		return nil, err
	}
	c.publishTrip(ctx, "created", trip)
	return trip, nil
}

// DispatchTrip moves a Draft trip to Dispatched. All four guards are
// re-evaluated against the vehicle and driver as they are now, not as
// they were at creation time.
func (c *Controller) DispatchTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip *models.Trip
	err := c.transact(ctx, "dispatch", func(ctx context.Context) error {
		var err error
		trip, err = c.getTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if !CanTransition(trip.Status, models.TripDispatched) {
			return invalidTransition(trip.Status, models.TripDispatched)
		}

		vehicle, err := c.getVehicle(ctx, trip.VehicleID)
		if err != nil {
			return err
		}
		driver, err := c.getDriver(ctx, trip.DriverID)
		if err != nil {
			return err
		}

		// Full guard set, fixed order, before any mutation.
		if gerr := VehicleAvailabilityGuard(vehicle); gerr != nil {
			return c.guardFailed(gerr)
		}
		if gerr := DriverAvailabilityGuard(driver); gerr != nil {
			return c.guardFailed(gerr)
		}
		if gerr := LicenseGuard(driver, c.today()); gerr != nil {
			return c.guardFailed(gerr)
		}
		if gerr := CapacityGuard(trip.CargoWeight, vehicle); gerr != nil {
			return c.guardFailed(gerr)
		}

		vehicle.Status = models.VehicleOnTrip
		driver.Status = models.DriverOnDuty
		trip.Status = models.TripDispatched
		trip.StartOdometer = vehicle.Odometer
		trip.UpdatedAt = c.Now()

		if err := c.store.SaveVehicle(ctx, vehicle); err != nil {
			return err
		}
		if err := c.store.SaveDriver(ctx, driver); err != nil {
			return err
		}
		return c.store.SaveTrip(ctx, trip)
	})
	if err != nil {
		return nil, err
	}
	c.publishTrip(ctx, "dispatched", trip)
	return trip, nil
}

// CompleteTrip moves a Dispatched trip to Completed, advances the
// vehicle odometer and releases vehicle and driver.
func (c *Controller) CompleteTrip(ctx context.Context, tripID string, endOdometer float64) (*models.Trip, error) {
	var trip *models.Trip
	err := c.transact(ctx, "complete", func(ctx context.Context) error {
		var err error
		trip, err = c.getTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if !CanTransition(trip.Status, models.TripCompleted) {
			return invalidTransition(trip.Status, models.TripCompleted)
		}

		vehicle, err := c.getVehicle(ctx, trip.VehicleID)
		if err != nil {
			return err
		}

		if endOdometer < trip.StartOdometer {
			switch c.odometerCheck {
			case OdometerReject:
				return newError(CodeOdometerRegression,
					"end odometer (%.1f) is below start odometer (%.1f)",
					endOdometer, trip.StartOdometer)
			case OdometerWarn:
				log.WithFields(log.Fields{
					"trip_id":        tripID,
					"start_odometer": trip.StartOdometer,
					"end_odometer":   endOdometer,
				}).Warn("Trip completed with regressing odometer reading")
			}
		}

		trip.EndOdometer = &endOdometer
		trip.Status = models.TripCompleted
		trip.UpdatedAt = c.Now()
		vehicle.Odometer = endOdometer
		vehicle.Status = models.VehicleAvailable

		if err := c.store.SaveVehicle(ctx, vehicle); err != nil {
			return err
		}
		if err := c.releaseDriver(ctx, trip.DriverID); err != nil {
			return err
		}
		return c.store.SaveTrip(ctx, trip)
	})
	if err != nil {
		return nil, err
	}
	c.publishTrip(ctx, "completed", trip)
	return trip, nil
}

// CancelTrip cancels a Draft or Dispatched trip. A dispatched cancel
// releases the vehicle and driver exactly like a completion, but the
// vehicle odometer is left untouched.
func (c *Controller) CancelTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip *models.Trip
	err := c.transact(ctx, "cancel", func(ctx context.Context) error {
		var err error
		trip, err = c.getTrip(ctx, tripID)
		if err != nil {
			return err
		}
		if !CanTransition(trip.Status, models.TripCancelled) {
			return invalidTransition(trip.Status, models.TripCancelled)
		}

		if trip.Status == models.TripDispatched {
			vehicle, err := c.getVehicle(ctx, trip.VehicleID)
			if err != nil {
				return err
			}
			vehicle.Status = models.VehicleAvailable
			if err := c.store.SaveVehicle(ctx, vehicle); err != nil {
				return err
			}
			if err := c.releaseDriver(ctx, trip.DriverID); err != nil {
				return err
			}
		}

		trip.Status = models.TripCancelled
		trip.UpdatedAt = c.Now()
		return c.store.SaveTrip(ctx, trip)
	})
	if err != nil {
		return nil, err
	}
	c.publishTrip(ctx, "cancelled", trip)
	return trip, nil
}

// RecordMaintenance logs a maintenance event and unconditionally
// forces the vehicle In Shop, even while On Trip. The override does
// not touch any dispatched trip; it is surfaced through the audit
// trail and an event instead of being silently applied.
func (c *Controller) RecordMaintenance(ctx context.Context, in RecordMaintenanceInput) (*models.MaintenanceLog, *models.Vehicle, error) {
	var (
		entry   *models.MaintenanceLog
		vehicle *models.Vehicle
		prior   models.VehicleStatus
	)
	err := c.transact(ctx, "maintenance", func(ctx context.Context) error {
		var err error
		vehicle, err = c.getVehicle(ctx, in.VehicleID)
		if err != nil {
			return err
		}

		now := c.Now()
		entry = &models.MaintenanceLog{
			VehicleID:   in.VehicleID,
			ServiceType: in.ServiceType,
			Cost:        in.Cost,
			Date:        in.Date,
			Notes:       in.Notes,
			CreatedAt:   now,
		}
		if err := c.store.InsertMaintenance(ctx, entry); err != nil {
			return err
		}

		prior = vehicle.Status
		vehicle.Status = models.VehicleInShop
		if err := c.store.SaveVehicle(ctx, vehicle); err != nil {
			return err
		}

		return c.store.InsertAuditLog(ctx, &models.AuditLog{
			UserID:    in.ActorID,
			Event:     models.AuditEventMaintenanceOverride,
			Status:    models.AuditStatusSuccess,
			Detail:    "vehicle " + in.VehicleID + " forced 'In Shop' from '" + string(prior) + "'",
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.MaintenanceOverridesTotal.Inc()
	if prior == models.VehicleOnTrip {
		metrics.MaintenanceOverridesOnTrip.Inc()
		log.WithFields(log.Fields{
			"vehicle_id": in.VehicleID,
		}).Warn("Maintenance logged for a vehicle that is On Trip; its dispatched trip remains active")
	}
	if c.pub != nil {
		c.pub.PublishMaintenanceOverride(ctx, in.VehicleID, entry.ID.Hex(), prior)
	}
	return entry, vehicle, nil
}

// transact runs fn inside one store transaction, keeps domain errors
// as-is and tags everything else as a persistence failure.
func (c *Controller) transact(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.store.WithTransaction(ctx, fn)
	if err != nil {
		if CodeOf(err) == "" {
			err = persistence(err)
		}
		metrics.TransitionsTotal.WithLabelValues(operation, "failure").Inc()
		return err
	}
	metrics.TransitionsTotal.WithLabelValues(operation, "success").Inc()
	return nil
}

// releaseDriver sets a trip's driver Off Duty if the driver record
// still exists. Trips hold only a weak reference, so a deleted driver
// is not an error here.
func (c *Controller) releaseDriver(ctx context.Context, driverID string) error {
	if driverID == "" {
		return nil
	}
	driver, err := c.store.GetDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			return nil
		}
		return err
	}
	driver.Status = models.DriverOffDuty
	return c.store.SaveDriver(ctx, driver)
}

func (c *Controller) getVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := c.store.GetVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			return nil, notFound("vehicle", id)
		}
		return nil, err
	}
	return v, nil
}

func (c *Controller) getDriver(ctx context.Context, id string) (*models.Driver, error) {
	d, err := c.store.GetDriver(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			return nil, notFound("driver", id)
		}
		return nil, err
	}
	return d, nil
}

func (c *Controller) getTrip(ctx context.Context, id string) (*models.Trip, error) {
	t, err := c.store.GetTrip(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			return nil, notFound("trip", id)
		}
		return nil, err
	}
	return t, nil
}

func (c *Controller) guardFailed(gerr *Error) error {
	metrics.GuardFailuresTotal.WithLabelValues(string(gerr.Code)).Inc()
	return gerr
}

func (c *Controller) publishTrip(ctx context.Context, event string, trip *models.Trip) {
	if c.pub != nil {
		c.pub.PublishTripEvent(ctx, event, trip)
	}
}

// today truncates the clock to a UTC date so a license expiring today
// is still valid.
func (c *Controller) today() time.Time {
	y, m, d := c.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
