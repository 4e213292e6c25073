package models

// DashboardAnalytics bundles the fleet KPIs computed for the
// dashboard in a single read.
type DashboardAnalytics struct {
	TotalVehicles     int64   `json:"total_vehicles"`
	AvailableVehicles int64   `json:"available_vehicles"`
	OnTripVehicles    int64   `json:"on_trip_vehicles"`
	InShopVehicles    int64   `json:"in_shop_vehicles"`
	FleetUtilization  float64 `json:"fleet_utilization"` // percent of vehicles On Trip

	TotalDrivers  int64 `json:"total_drivers"`
	OnDutyDrivers int64 `json:"on_duty_drivers"`

	TotalTrips     int64 `json:"total_trips"`
	ActiveTrips    int64 `json:"active_trips"`
	CompletedTrips int64 `json:"completed_trips"`

	TotalFuelCost        float64  `json:"total_fuel_cost"`
	TotalMaintenanceCost float64  `json:"total_maintenance_cost"`
	TotalOperationalCost float64  `json:"total_operational_cost"`
	AvgFuelEfficiency    *float64 `json:"avg_fuel_efficiency,omitempty"` // km per liter, nil without fuel data
}
