package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueue is the queue leads are published to.
const DefaultQueue = "conceptlink.leads"

// Publisher delivers lead payloads.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
	Close() error
}

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes leads as persistent JSON messages to a durable
// RabbitMQ queue.
type AMQPPublisher struct {
	conn   *amqp.Connection
	logger *zap.Logger
	queue  string

	mu sync.Mutex
	ch channel
}

// DialAMQP connects to url and declares queue.
func DialAMQP(rawURL, queue string, logger *zap.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	logger.Info("connected to RabbitMQ", zap.String("host", redactURL(rawURL)), zap.String("queue", queue))
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, logger: logger.Named("leads")}, nil
}

// Publish sends p to the queue.
func (a *AMQPPublisher) Publish(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal lead: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.ch.PublishWithContext(
		ctx,
		"",      // exchange
		a.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    p.ID.String(),
			Timestamp:    p.CompletedAt,
			Type:         "conceptlink.lead",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead: %w", err)
	}
	a.logger.Info("lead published", zap.String("session_id", p.SessionID), zap.String("lead_id", p.ID.String()))
	return nil
}

// Close closes the channel and connection.
func (a *AMQPPublisher) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		a.ch.Close()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

// redactURL keeps only the host of an AMQP URL for logging.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Host
}
