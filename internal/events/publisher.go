package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetflow/internal/models"
)

const (
	tripTopicPrefix  = "fleetflow/trips/"
	maintenanceTopic = "fleetflow/maintenance"

	publishQoS     = 1
	publishTimeout = 2 * time.Second
)

// TripEvent is the payload published for every committed trip
// transition.
type TripEvent struct {
	EventID   string            `json:"event_id"`
	Event     string            `json:"event"`
	TripID    string            `json:"trip_id"`
	VehicleID string            `json:"vehicle_id"`
	DriverID  string            `json:"driver_id,omitempty"`
	Status    models.TripStatus `json:"status"`
	At        time.Time         `json:"at"`
}

// MaintenanceEvent is published whenever logging maintenance forces a
// vehicle In Shop. PriorStatus makes the override auditable: an "On
// Trip" prior status means a dispatched trip is still referencing the
// vehicle.
type MaintenanceEvent struct {
	EventID       string               `json:"event_id"`
	VehicleID     string               `json:"vehicle_id"`
	MaintenanceID string               `json:"maintenance_id"`
	PriorStatus   models.VehicleStatus `json:"prior_status"`
	At            time.Time            `json:"at"`
}

// MQTTPublisher publishes lifecycle events to an MQTT broker. Events
// are emitted after the store transaction commits; publishing is
// best-effort and never fails the operation that produced the event.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &MQTTPublisher{client: client}, nil
}

// PublishTripEvent publishes a trip transition event.
func (p *MQTTPublisher) PublishTripEvent(_ context.Context, event string, trip *models.Trip) {
	p.publish(tripTopicPrefix+event, TripEvent{
		EventID:   uuid.NewString(),
		Event:     event,
		TripID:    trip.ID.Hex(),
		VehicleID: trip.VehicleID,
		DriverID:  trip.DriverID,
		Status:    trip.Status,
		At:        time.Now().UTC(),
	})
}

// PublishMaintenanceOverride publishes a maintenance override event.
func (p *MQTTPublisher) PublishMaintenanceOverride(_ context.Context, vehicleID, maintenanceID string, prior models.VehicleStatus) {
	p.publish(maintenanceTopic, MaintenanceEvent{
		EventID:       uuid.NewString(),
		VehicleID:     vehicleID,
		MaintenanceID: maintenanceID,
		PriorStatus:   prior,
		At:            time.Now().UTC(),
	})
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func (p *MQTTPublisher) publish(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).WithField("topic", topic).Error("Failed to marshal event")
		return
	}
	token := p.client.Publish(topic, publishQoS, false, data)
	go func() {
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).Error("Failed to publish event")
		}
	}()
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

// PublishTripEvent implements lifecycle.Publisher.
func (NopPublisher) PublishTripEvent(context.Context, string, *models.Trip) {}

// PublishMaintenanceOverride implements lifecycle.Publisher.
func (NopPublisher) PublishMaintenanceOverride(context.Context, string, string, models.VehicleStatus) {
}
