package lifecycle

import "github.com/ukydev/fleetflow/internal/models"

// allowedTransitions defines the trip state graph. Completed and
// Cancelled are terminal: no edges lead out of them.
var allowedTransitions = map[models.TripStatus][]models.TripStatus{
	models.TripDraft:      {models.TripDispatched, models.TripCancelled},
	models.TripDispatched: {models.TripCompleted, models.TripCancelled},
	models.TripCompleted:  {},
	models.TripCancelled:  {},
}

// CanTransition reports whether from -> to is an edge of the trip
// state graph.
func CanTransition(from, to models.TripStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given
// status in one step.
func AllowedTransitions(from models.TripStatus) []models.TripStatus {
	return allowedTransitions[from]
}
