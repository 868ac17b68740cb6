package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishBuffer = 256

// Publisher forwards events to a durable RabbitMQ queue from a background
// loop so request handlers never wait on the broker.
type Publisher struct {
	url    string
	queue  string
	events chan Event
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{
		url:    url,
		queue:  queue,
		events: make(chan Event, publishBuffer),
	}
}

// Publish enqueues ev, dropping it when the buffer is full.
func (p *Publisher) Publish(_ context.Context, ev Event) {
	select {
	case p.events <- ev:
	default:
		log.Printf("rabbitmq: buffer full, dropping event type=%s resource=%s:%d", ev.Type, ev.ResourceType, ev.ResourceID)
	}
}

// Run dials the broker and publishes buffered events until ctx is done,
// reconnecting with backoff on failure.
func (p *Publisher) Run(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			log.Printf("rabbitmq: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = p.publishLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		log.Printf("rabbitmq: publish loop ended: %v; reconnecting", err)
	}
}

func (p *Publisher) publishLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			return fmt.Errorf("connection closed: %v", amqpErr)
		case ev := <-p.events:
			msg, err := encode(ev)
			if err != nil {
				log.Printf("rabbitmq: marshal event failed: %v", err)
				continue
			}
			pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = ch.PublishWithContext(pubCtx, "", p.queue, false, false, msg)
			cancel()
			if err != nil {
				log.Printf("rabbitmq: publish failed type=%s: %v", ev.Type, err)
				return err
			}
		}
	}
}

func encode(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt.UTC(),
		Body:         body,
	}, nil
}
