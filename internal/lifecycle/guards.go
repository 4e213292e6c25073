package lifecycle

import (
	"time"

	"github.com/ukydev/fleetflow/internal/models"
)

// Guards are pure predicates over entity snapshots. They never mutate
// and never touch the store; callers fetch everything first and run
// the full applicable set before any mutation.

// CapacityGuard fails when the cargo weight exceeds the vehicle's
// maximum capacity.
func CapacityGuard(cargoWeight float64, vehicle *models.Vehicle) *Error {
	if cargoWeight > vehicle.MaxCapacity {
		return newError(CodeCapacityExceeded,
			"cargo weight (%.1f kg) exceeds vehicle max capacity (%.1f kg)",
			cargoWeight, vehicle.MaxCapacity)
	}
	return nil
}

// LicenseGuard fails when the driver's license expired before today.
func LicenseGuard(driver *models.Driver, today time.Time) *Error {
	if driver.LicenseExpiry.Before(today) {
		return newError(CodeLicenseExpired,
			"driver '%s' has an expired license (expired %s)",
			driver.Name, driver.LicenseExpiry.Format("2006-01-02"))
	}
	return nil
}

// VehicleAvailabilityGuard fails unless the vehicle is Available.
func VehicleAvailabilityGuard(vehicle *models.Vehicle) *Error {
	if vehicle.Status != models.VehicleAvailable {
		return newError(CodeVehicleUnavailable,
			"vehicle '%s' is currently '%s', only 'Available' vehicles can be dispatched",
			vehicle.Name, vehicle.Status)
	}
	return nil
}

// DriverAvailabilityGuard fails unless the driver is Off Duty.
func DriverAvailabilityGuard(driver *models.Driver) *Error {
	if driver.Status != models.DriverOffDuty {
		return newError(CodeDriverUnavailable,
			"driver '%s' is currently '%s', only 'Off Duty' drivers can be assigned",
			driver.Name, driver.Status)
	}
	return nil
}
