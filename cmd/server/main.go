package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/tahsinn/campus-found/backend/internal/router"
	"github.com/tahsinn/campus-found/backend/internal/services"
	"github.com/tahsinn/campus-found/backend/pkg/config"
	"github.com/tahsinn/campus-found/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Firebase push delivery; the API runs without it.
	var pusher services.Pusher
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Printf("Firebase disabled: %v", err)
		} else {
			pusher = firebaseApp
		}
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	bus, hub := router.SetupRoutes(e, db.Postgres, db.Mongo, db.Redis, pusher)

	// Start the sync bus fan-in and the websocket hub
	if err := bus.Start(ctx); err != nil {
		log.Fatalf("Failed to start sync bus: %v", err)
	}
	go hub.Run(ctx)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
