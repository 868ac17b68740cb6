package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"linkup/internal/config"
	"linkup/internal/queue"
)

// eventlog tails the reservation event queue and writes one line per event.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = queue.Consume(ctx, cfg.RabbitMQURL, queue.DefaultQueueName, func(_ context.Context, ev queue.Event) error {
		log.Printf("event type=%s resource=%s:%d status=%s user_id=%d at=%s",
			ev.Type, ev.ResourceType, ev.ResourceID, ev.Status, ev.UserID, ev.OccurredAt.Format("2006-01-02T15:04:05Z07:00"))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
