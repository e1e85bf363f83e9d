// infrastructure/event_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

// DialRabbitMQ connects with a bounded number of attempts. It runs at
// startup only; request handling never retries.
func DialRabbitMQ(url string, attempts int, wait time.Duration, log *logrus.Logger) (*amqp.Connection, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			log.Info("connected to RabbitMQ")
			return conn, nil
		}
		if i < attempts {
			log.WithError(err).Warnf("RabbitMQ not reachable, retrying in %s (%d/%d)", wait, i, attempts)
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
}

// AMQPEventPublisher publishes creation events to a durable queue on the
// default exchange.
type AMQPEventPublisher struct {
	Conn  *amqp.Connection
	Queue string
}

// NewAMQPEventPublisher declares the queue once so publishes can assume it.
func NewAMQPEventPublisher(conn *amqp.Connection, queue string) (*AMQPEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &AMQPEventPublisher{Conn: conn, Queue: queue}, nil
}

func (p *AMQPEventPublisher) PublishCreation(ctx context.Context, event domain.CreationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ch, err := p.Conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",      // exchange
		p.Queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.CreationID,
			Timestamp:    event.RenderedAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish creation %s: %w", event.CreationID, err)
	}
	return nil
}

func (p *AMQPEventPublisher) Ping(context.Context) error {
	if p.Conn == nil || p.Conn.IsClosed() {
		return errors.New("connection closed")
	}
	ch, err := p.Conn.Channel()
	if err != nil {
		return err
	}
	return ch.Close()
}

// LogEventPublisher stands in when no broker is configured.
type LogEventPublisher struct {
	Logger *logrus.Logger
}

func (p *LogEventPublisher) PublishCreation(_ context.Context, event domain.CreationEvent) error {
	p.Logger.WithFields(logrus.Fields{
		"creation_id": event.CreationID,
		"user_id":     event.UserID,
		"video_url":   event.VideoURL,
	}).Info("creation rendered")
	return nil
}
