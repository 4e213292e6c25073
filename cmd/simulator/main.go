package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// The simulator drives the trip lifecycle API end to end: it
// registers a dispatcher, provisions a small fleet, then keeps
// creating, dispatching, completing and cancelling trips, with the
// occasional maintenance event thrown in. Guard rejections are
// expected output, not failures.

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type simConfig struct {
	apiURL   string
	vehicles int
	interval time.Duration
	email    string
	password string
}

var authToken string

func loadConfig() simConfig {
	cfg := simConfig{
		apiURL:   "http://localhost:8080/api",
		vehicles: 3,
		interval: 2 * time.Second,
		email:    "simulator@fleetflow.local",
		password: "simulator-pass-1",
	}
	if v := os.Getenv("API_URL"); v != "" {
		cfg.apiURL = v
	}
	if v := os.Getenv("SIM_VEHICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.vehicles = n
		}
	}
	if v := os.Getenv("SIM_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.interval = d
		}
	}
	return cfg
}

func call(method, url string, payload interface{}) (*envelope, int, error) {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return &env, resp.StatusCode, nil
}

func login(cfg simConfig) error {
	register := map[string]string{
		"email":    cfg.email,
		"password": cfg.password,
		"name":     "Fleet Simulator",
		"role":     "Manager",
	}
	// Registration may 409 on restart; that's fine.
	if _, _, err := call(http.MethodPost, cfg.apiURL+"/auth/register", register); err != nil {
		return err
	}

	env, status, err := call(http.MethodPost, cfg.apiURL+"/auth/login", map[string]string{
		"email":    cfg.email,
		"password": cfg.password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed: %s", env.Message)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return err
	}
	authToken = out.Token
	return nil
}

func idOf(env *envelope) string {
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return ""
	}
	return out.ID
}

func createVehicle(cfg simConfig, i int) (string, float64, error) {
	makes := []string{"Volvo FH16", "Scania R450", "MAN TGX", "DAF XF", "Mercedes Actros"}
	capacity := float64(500 + rand.Intn(1500))
	env, status, err := call(http.MethodPost, cfg.apiURL+"/vehicles", map[string]interface{}{
		"name":          fmt.Sprintf("%s #%d", makes[rand.Intn(len(makes))], i+1),
		"license_plate": fmt.Sprintf("SIM-%04d", rand.Intn(10000)),
		"max_capacity":  capacity,
		"odometer":      float64(rand.Intn(100000)),
	})
	if err != nil {
		return "", 0, err
	}
	if status != http.StatusCreated {
		return "", 0, fmt.Errorf("vehicle creation failed: %s", env.Message)
	}
	return idOf(env), capacity, nil
}

func createDriver(cfg simConfig, i int) (string, error) {
	names := []string{"Alex Mercer", "Dana Cole", "Jordan Reyes", "Sam Okafor", "Riley Chen"}
	// One in five drivers gets an already-expired license so the
	// license guard fires during the run.
	expiry := time.Now().AddDate(1, 0, 0)
	if rand.Intn(5) == 0 {
		expiry = time.Now().AddDate(0, 0, -30)
	}
	env, status, err := call(http.MethodPost, cfg.apiURL+"/drivers", map[string]interface{}{
		"name":           fmt.Sprintf("%s #%d", names[rand.Intn(len(names))], i+1),
		"license_expiry": expiry.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("driver creation failed: %s", env.Message)
	}
	return idOf(env), nil
}

func runTrip(cfg simConfig, vehicleID string, capacity float64, driverID string) {
	cargo := capacity * (0.3 + rand.Float64()*0.6)
	if rand.Intn(10) == 0 {
		cargo = capacity * 1.2 // provoke the capacity guard
	}

	env, status, err := call(http.MethodPost, cfg.apiURL+"/trips", map[string]interface{}{
		"vehicle_id":   vehicleID,
		"driver_id":    driverID,
		"cargo_weight": cargo,
	})
	if err != nil {
		log.WithError(err).Error("Trip creation request failed")
		return
	}
	if status != http.StatusCreated {
		log.WithField("reason", env.Message).Info("Trip rejected at creation")
		return
	}
	tripID := idOf(env)

	env, status, err = call(http.MethodPut, cfg.apiURL+"/trips/"+tripID+"/dispatch", nil)
	if err != nil {
		log.WithError(err).Error("Dispatch request failed")
		return
	}
	if status != http.StatusOK {
		log.WithFields(log.Fields{"trip_id": tripID, "reason": env.Message}).Info("Dispatch rejected")
		return
	}
	log.WithField("trip_id", tripID).Info("Trip dispatched")

	time.Sleep(cfg.interval)

	if rand.Intn(5) == 0 {
		env, status, err = call(http.MethodPut, cfg.apiURL+"/trips/"+tripID+"/cancel", nil)
		if err == nil && status == http.StatusOK {
			log.WithField("trip_id", tripID).Info("Trip cancelled mid-flight")
		}
		return
	}

	var trip struct {
		StartOdometer float64 `json:"start_odometer"`
	}
	_ = json.Unmarshal(env.Data, &trip)
	end := trip.StartOdometer + 50 + rand.Float64()*450

	env, status, err = call(http.MethodPut, cfg.apiURL+"/trips/"+tripID+"/complete",
		map[string]float64{"end_odometer": end})
	if err != nil {
		log.WithError(err).Error("Complete request failed")
		return
	}
	if status != http.StatusOK {
		log.WithFields(log.Fields{"trip_id": tripID, "reason": env.Message}).Warn("Complete rejected")
		return
	}
	log.WithFields(log.Fields{"trip_id": tripID, "end_odometer": end}).Info("Trip completed")
}

func recordMaintenance(cfg simConfig, vehicleID string) {
	services := []string{"oil_change", "tire_rotation", "brake_service", "inspection"}
	env, status, err := call(http.MethodPost, cfg.apiURL+"/maintenance", map[string]interface{}{
		"vehicle_id":   vehicleID,
		"service_type": services[rand.Intn(len(services))],
		"cost":         50 + rand.Float64()*450,
		"date":         time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.WithError(err).Error("Maintenance request failed")
		return
	}
	if status != http.StatusCreated {
		log.WithField("reason", env.Message).Warn("Maintenance rejected")
		return
	}
	log.WithField("vehicle_id", vehicleID).Info("Maintenance logged, vehicle is In Shop")
}

func main() {
	cfg := loadConfig()
	log.WithFields(log.Fields{
		"api":      cfg.apiURL,
		"vehicles": cfg.vehicles,
	}).Info("Starting fleet simulator")

	if err := login(cfg); err != nil {
		log.WithError(err).Fatal("Failed to authenticate")
	}

	type asset struct {
		vehicleID string
		capacity  float64
	}
	var fleet []asset
	var drivers []string
	for i := 0; i < cfg.vehicles; i++ {
		vid, capacity, err := createVehicle(cfg, i)
		if err != nil {
			log.WithError(err).Fatal("Failed to create vehicle")
		}
		did, err := createDriver(cfg, i)
		if err != nil {
			log.WithError(err).Fatal("Failed to create driver")
		}
		fleet = append(fleet, asset{vehicleID: vid, capacity: capacity})
		drivers = append(drivers, did)
	}
	log.WithField("count", len(fleet)).Info("Fleet provisioned")

	for {
		v := fleet[rand.Intn(len(fleet))]
		d := drivers[rand.Intn(len(drivers))]
		runTrip(cfg, v.vehicleID, v.capacity, d)

		if rand.Intn(10) == 0 {
			recordMaintenance(cfg, fleet[rand.Intn(len(fleet))].vehicleID)
		}
		time.Sleep(cfg.interval)
	}
}
