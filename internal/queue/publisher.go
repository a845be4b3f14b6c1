package queue

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/spark-meetup/internal/notification"
)

// Publisher implements notification.Dispatcher by publishing each message to
// a durable RabbitMQ queue. Every publish dials its own connection; traffic is
// a handful of messages per user action.
type Publisher struct {
	URL    string
	Queue  string
	Logger *slog.Logger
}

// NewPublisher returns a Publisher for url and queue.
func NewPublisher(url, queue string, logger *slog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{URL: url, Queue: queue, Logger: logger}
}

// Dispatch publishes msg as a persistent JSON message. Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Dispatch(ctx context.Context, msg notification.Message) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Logger.WarnContext(ctx, "rabbitmq: dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Logger.WarnContext(ctx, "rabbitmq: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		p.Logger.WarnContext(ctx, "rabbitmq: queue declare failed", "error", err)
		return err
	}

	now := time.Now().UTC()
	body, err := encodeEvent(msg, now)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    now,
		Type:         string(msg.Kind),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		p.Logger.WarnContext(ctx, "rabbitmq: publish failed", "error", err)
		return err
	}
	return nil
}
