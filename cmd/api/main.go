package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"linkup/internal/app"
	"linkup/internal/config"
	"linkup/internal/database"
	"linkup/internal/domain/reservation"
	"linkup/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db, app.Models()...); err != nil {
		log.Fatal(err)
	}
	if err := reservation.EnsureConstraints(db); err != nil {
		log.Fatalf("reservation constraints: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var events queue.Sink
	if cfg.RabbitMQURL != "" {
		publisher := queue.NewPublisher(cfg.RabbitMQURL, queue.DefaultQueueName)
		go publisher.Run(ctx)
		events = publisher
		log.Printf("rabbitmq: publishing events to %s", queue.DefaultQueueName)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	a, err := app.New(app.Options{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Events: events,
	})
	if err != nil {
		log.Fatal(err)
	}

	if cfg.SweepCron != "" {
		sweeps, err := reservation.ScheduleSweeps(cfg.SweepCron, a.Sweeper)
		if err != nil {
			log.Fatalf("invalid SWEEP_CRON %q: %v", cfg.SweepCron, err)
		}
		sweeps.Start()
		defer sweeps.Stop()
		log.Printf("reservation sweep scheduled: %s", cfg.SweepCron)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
