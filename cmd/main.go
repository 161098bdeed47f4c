package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tunemate/backend/internal/api/handler"
	"tunemate/backend/internal/catalog"
	"tunemate/backend/internal/config"
	"tunemate/backend/internal/matchhub"
	"tunemate/backend/internal/models"
	"tunemate/backend/internal/realtime"
	"tunemate/backend/internal/storage"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Profile{},
		&models.ActiveListener{},
		&models.Match{},
		&models.ChatMessage{},
		&models.ListeningHistory{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting TuneMate Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	bus := realtime.NewBus()
	realtime.StartFeedListener(s, bus)

	hub := matchhub.NewManagerService(s, bus)
	go hub.Run()

	// Clients that vanish without unregistering would stay matchable forever;
	// sweep their registry rows on a schedule.
	sweeper := cron.New()
	_, err := sweeper.AddFunc(config.SweepSchedule, func() {
		if n, err := s.DeactivateStaleListeners(config.StaleListenerAge); err == nil && n > 0 {
			log.Printf("Swept %d stale active listeners", n)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule stale-listener sweep: %v", err)
	}
	sweeper.Start()

	r := gin.Default()
	h := handler.NewHandler(hub, s, catalog.NewClient(cfg.CatalogBaseURL), rdb, cfg)

	r.POST("/login", h.Login)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/matches", h.ListMatches)
	r.GET("/recommendations", h.Recommendations)
	r.GET("/songs/search", h.SearchSongs)
	r.GET("/songs/trending", h.TrendingSongs)
	r.GET("/songs", h.GetSong)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
