package main

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleetflow/internal/auth"
	"github.com/ukydev/fleetflow/internal/config"
	"github.com/ukydev/fleetflow/internal/db"
	"github.com/ukydev/fleetflow/internal/events"
	"github.com/ukydev/fleetflow/internal/handlers"
	"github.com/ukydev/fleetflow/internal/lifecycle"
	"github.com/ukydev/fleetflow/internal/middleware"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	cfg := config.Load()

	ctx := context.Background()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(ctx)
	}()

	store := db.NewStore(client, cfg.MongoDatabase)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}

	var publisher lifecycle.Publisher = events.NopPublisher{}
	if cfg.MQTTBroker != "" {
		p, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.WithError(err).Warn("MQTT broker unreachable, lifecycle events disabled")
		} else {
			defer p.Close()
			publisher = p
			log.WithField("broker", cfg.MQTTBroker).Info("Publishing lifecycle events")
		}
	}

	controller := lifecycle.NewController(store, publisher, lifecycle.OdometerCheck(cfg.OdometerCheck))
	authService := auth.NewService(cfg.JWTSecret, cfg.TokenExpiry)

	authMW := middleware.NewAuthMiddleware(authService)
	rateMW := middleware.NewRateLimitMiddleware()

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        handlers.NewAuthHandler(authService, store, store),
		Vehicles:    handlers.NewVehiclesHandler(store),
		Drivers:     handlers.NewDriversHandler(store),
		Trips:       handlers.NewTripsHandler(controller, store),
		Maintenance: handlers.NewMaintenanceHandler(controller, store),
		Finance:     handlers.NewFinanceHandler(store),
		Analytics:   handlers.NewAnalyticsHandler(store),
		Audit:       handlers.NewAuditHandler(store),
		AuthMW:      authMW,
		RateLimit:   rateMW.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow),
	})

	log.WithField("port", cfg.Port).Info("FleetFlow API listening")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("HTTP server failed")
	}
}
