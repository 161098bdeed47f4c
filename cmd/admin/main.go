package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tunemate/backend/internal/config"
	"tunemate/backend/internal/models"
	"tunemate/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "sweep":
		age := config.StaleListenerAge
		if len(os.Args) > 2 {
			hours, err := strconv.Atoi(os.Args[2])
			if err != nil || hours <= 0 {
				fmt.Println("Usage: admin sweep [age_in_hours]")
				os.Exit(1)
			}
			age = time.Duration(hours) * time.Hour
		}
		n, err := storageSvc.DeactivateStaleListeners(age)
		if err != nil {
			log.Fatalf("Error sweeping stale listeners: %v", err)
		}
		fmt.Printf("Deactivated %d stale listener rows.\n", n)
	case "stats":
		if err := printStats(db); err != nil {
			log.Fatalf("Error collecting stats: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func printStats(db *gorm.DB) error {
	tables := []struct {
		name  string
		model interface{}
		where []interface{}
	}{
		{"profiles", &models.Profile{}, nil},
		{"active listeners", &models.ActiveListener{}, []interface{}{"is_active = ?", true}},
		{"matches", &models.Match{}, nil},
		{"chat messages", &models.ChatMessage{}, nil},
		{"history entries", &models.ListeningHistory{}, nil},
	}

	for _, table := range tables {
		q := db.Model(table.model)
		if table.where != nil {
			q = q.Where(table.where[0], table.where[1:]...)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		fmt.Printf("%-18s %d\n", table.name, count)
	}
	return nil
}
