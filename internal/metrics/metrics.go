package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetflow_transitions_total",
			Help: "Total number of trip lifecycle operations",
		},
		[]string{"operation", "outcome"},
	)

	GuardFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetflow_guard_failures_total",
			Help: "Total number of guard rejections",
		},
		[]string{"guard"},
	)

	MaintenanceOverridesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetflow_maintenance_overrides_total",
			Help: "Total number of maintenance events that forced a vehicle In Shop",
		},
	)

	MaintenanceOverridesOnTrip = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetflow_maintenance_overrides_on_trip_total",
			Help: "Maintenance overrides applied to vehicles that were On Trip",
		},
	)
)
