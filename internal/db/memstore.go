package db

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/models"
)

// MemStore is an in-memory implementation of lifecycle.Store. A
// store-wide mutex serializes transactions, and a snapshot taken at
// transaction start is restored on failure, so the atomicity and
// isolation the controller assumes hold exactly. It backs the
// lifecycle tests, including the concurrent dispatch scenarios.
type MemStore struct {
	mu          sync.Mutex
	vehicles    map[string]models.Vehicle
	drivers     map[string]models.Driver
	trips       map[string]models.Trip
	maintenance map[string]models.MaintenanceLog
	audits      []models.AuditLog
}

type memTxKey struct{}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		vehicles:    make(map[string]models.Vehicle),
		drivers:     make(map[string]models.Driver),
		trips:       make(map[string]models.Trip),
		maintenance: make(map[string]models.MaintenanceLog),
	}
}

// WithTransaction serializes fn against all other store access and
// rolls every mutation back if fn fails.
func (m *MemStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	vehicles    map[string]models.Vehicle
	drivers     map[string]models.Driver
	trips       map[string]models.Trip
	maintenance map[string]models.MaintenanceLog
	auditLen    int
}

func (m *MemStore) snapshot() memSnapshot {
	return memSnapshot{
		vehicles:    copyMap(m.vehicles),
		drivers:     copyMap(m.drivers),
		trips:       copyMap(m.trips),
		maintenance: copyMap(m.maintenance),
		auditLen:    len(m.audits),
	}
}

func (m *MemStore) restore(snap memSnapshot) {
	m.vehicles = snap.vehicles
	m.drivers = snap.drivers
	m.trips = snap.trips
	m.maintenance = snap.maintenance
	m.audits = m.audits[:snap.auditLen]
}

func copyMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// lock acquires the store mutex unless the caller already holds it
// through an open transaction.
func (m *MemStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

// GetVehicle finds a vehicle by id.
func (m *MemStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	defer m.lock(ctx)()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("vehicle '%s': %w", id, lifecycle.ErrEntityNotFound)
	}
	return &v, nil
}

// GetDriver finds a driver by id.
func (m *MemStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	defer m.lock(ctx)()
	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("driver '%s': %w", id, lifecycle.ErrEntityNotFound)
	}
	return &d, nil
}

// GetTrip finds a trip by id.
func (m *MemStore) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	defer m.lock(ctx)()
	t, ok := m.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip '%s': %w", id, lifecycle.ErrEntityNotFound)
	}
	return &t, nil
}

// InsertVehicle adds a vehicle, assigning an id when absent.
func (m *MemStore) InsertVehicle(ctx context.Context, v *models.Vehicle) error {
	defer m.lock(ctx)()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	m.vehicles[v.ID.Hex()] = *v
	return nil
}

// InsertDriver adds a driver, assigning an id when absent.
func (m *MemStore) InsertDriver(ctx context.Context, d *models.Driver) error {
	defer m.lock(ctx)()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	m.drivers[d.ID.Hex()] = *d
	return nil
}

// InsertTrip adds a trip, assigning an id when absent.
func (m *MemStore) InsertTrip(ctx context.Context, t *models.Trip) error {
	defer m.lock(ctx)()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	m.trips[t.ID.Hex()] = *t
	return nil
}

// InsertMaintenance adds a maintenance log, assigning an id when
// absent.
func (m *MemStore) InsertMaintenance(ctx context.Context, e *models.MaintenanceLog) error {
	defer m.lock(ctx)()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	m.maintenance[e.ID.Hex()] = *e
	return nil
}

// InsertAuditLog appends an audit entry.
func (m *MemStore) InsertAuditLog(ctx context.Context, entry *models.AuditLog) error {
	defer m.lock(ctx)()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	m.audits = append(m.audits, *entry)
	return nil
}

// SaveVehicle writes a vehicle back.
func (m *MemStore) SaveVehicle(ctx context.Context, v *models.Vehicle) error {
	defer m.lock(ctx)()
	if _, ok := m.vehicles[v.ID.Hex()]; !ok {
		return fmt.Errorf("vehicle '%s': %w", v.ID.Hex(), lifecycle.ErrEntityNotFound)
	}
	m.vehicles[v.ID.Hex()] = *v
	return nil
}

// SaveDriver writes a driver back.
func (m *MemStore) SaveDriver(ctx context.Context, d *models.Driver) error {
	defer m.lock(ctx)()
	if _, ok := m.drivers[d.ID.Hex()]; !ok {
		return fmt.Errorf("driver '%s': %w", d.ID.Hex(), lifecycle.ErrEntityNotFound)
	}
	m.drivers[d.ID.Hex()] = *d
	return nil
}

// SaveTrip writes a trip back.
func (m *MemStore) SaveTrip(ctx context.Context, t *models.Trip) error {
	defer m.lock(ctx)()
	if _, ok := m.trips[t.ID.Hex()]; !ok {
		return fmt.Errorf("trip '%s': %w", t.ID.Hex(), lifecycle.ErrEntityNotFound)
	}
	m.trips[t.ID.Hex()] = *t
	return nil
}

// DeleteDriver removes a driver. Trips keep their driver reference.
func (m *MemStore) DeleteDriver(ctx context.Context, id string) error {
	defer m.lock(ctx)()
	if _, ok := m.drivers[id]; !ok {
		return fmt.Errorf("driver '%s': %w", id, lifecycle.ErrEntityNotFound)
	}
	delete(m.drivers, id)
	return nil
}

// AuditLogs returns a copy of the recorded audit entries.
func (m *MemStore) AuditLogs() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AuditLog, len(m.audits))
	copy(out, m.audits)
	return out
}

// DispatchedTripsFor counts Dispatched trips referencing the given
// vehicle or driver id.
func (m *MemStore) DispatchedTripsFor(vehicleID, driverID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.trips {
		if t.Status != models.TripDispatched {
			continue
		}
		if (vehicleID != "" && t.VehicleID == vehicleID) || (driverID != "" && t.DriverID == driverID) {
			n++
		}
	}
	return n
}
