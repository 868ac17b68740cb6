package main

import (
	"context"
	"log"

	"linkup/internal/app"
	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/domain/reservation"
	"linkup/internal/domain/resource"
	"linkup/internal/pkg/clock"
)

// sweep deletes expired reservations and releases resources nobody holds
// any more. Meant for cron or a Kubernetes CronJob.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		log.Fatal(err)
	}

	registry := resource.NewRegistry(db)
	sweeper := reservation.NewSweeper(db, registry, reservation.NewRepository(db), clock.New(cfg.Location), nil)

	res, err := sweeper.Sweep(context.Background())
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	log.Printf("sweep completed: expired=%d reset=%d", res.Expired, res.Reset)
}
