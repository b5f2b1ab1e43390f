// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/top-movies/internal/queue"
)

// Publisher sends movie activity events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event q.MovieEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.MovieEvent) error { return nil }

// DefaultDialTimeout bounds connecting to the broker when AMQPPublisher
// has no DialTimeout.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes to the "movie.activity" queue.  It dials per
// publish; mutations are rare enough that a pooled connection is not needed.
type AMQPPublisher struct {
	URL         string
	Log         hclog.Logger
	DialTimeout time.Duration // zero means DefaultDialTimeout
}

// Publish sends event as a persistent JSON message.  The function never
// panics; any error is logged and returned so the caller can choose to
// ignore it.  Connecting never takes longer than the dial timeout or what
// is left of ctx.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.MovieEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout(ctx))})
	if err != nil {
		p.Log.Warn("rabbitmq dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.ActivityQueueName, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		p.Log.Warn("rabbitmq queue declare failed", "error", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.Log.Warn("marshal event failed", "error", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		q.ActivityQueueName, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		p.Log.Warn("rabbitmq publish failed", "error", err)
		return err
	}

	p.Log.Debug("published movie event", "type", event.Type, "movie_id", event.MovieID)
	return nil
}

// dialTimeout is DialTimeout, shortened to what is left of ctx.
func (p *AMQPPublisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}
