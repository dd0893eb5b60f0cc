package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playvolley/backend/internal/api"
	"github.com/playvolley/backend/internal/config"
	"github.com/playvolley/backend/internal/database"
	"github.com/playvolley/backend/internal/game"
	"github.com/playvolley/backend/internal/migrations"
	"github.com/playvolley/backend/internal/redis"
	"github.com/playvolley/backend/internal/results"
	"github.com/playvolley/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()
	ws.SetRedisClient(rdb)

	// Websocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Session manager with the results sink
	recorder := results.NewRecorder(db)
	mgr := game.NewManager(game.NewScheduler(), ws.NewEmitterFactory(hub), func(o game.Outcome) {
		go recorder.Record(o)
	})
	go mgr.StartExpiryChecker()

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, hub, mgr, db, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting PlayVolley server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
