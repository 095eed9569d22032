// Package amqp publishes confirmed order lines to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/barista/pkg/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange   = "barista.events"
	DefaultRoutingKey = "order.line.confirmed.v1"
	publishTimeout    = 3 * time.Second
)

// Channel matches the methods from *amqp.Channel that the sink uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Sink implements ports.OrderSink by publishing one persistent JSON message per record.
type Sink struct {
	ch         Channel
	conn       *amqp.Connection
	exchange   string
	routingKey string
}

type Option func(*Sink)

// WithExchange sets the exchange messages are published to.
func WithExchange(name string) Option {
	return func(s *Sink) {
		s.exchange = name
	}
}

// WithRoutingKey sets the routing key of every message.
func WithRoutingKey(key string) Option {
	return func(s *Sink) {
		s.routingKey = key
	}
}

// NewSink wraps an open channel. The exchange must already exist.
func NewSink(ch Channel, opts ...Option) *Sink {
	s := &Sink{
		ch:         ch,
		exchange:   DefaultExchange,
		routingKey: DefaultRoutingKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to the broker, opens a channel and declares the topic exchange.
func Dial(url string, opts ...Option) (*Sink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	s := NewSink(ch, opts...)
	s.conn = conn

	// Declare the exchange so publish never fails due to missing infra
	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("declare %s: %w", s.exchange, err)
	}
	return s, nil
}

// Append publishes the record and waits at most a few seconds for the broker.
func (s *Sink) Append(ctx context.Context, record domain.OrderRecord) error {
	body, err := json.Marshal(record.Wire())
	if err != nil {
		return fmt.Errorf("marshal order line: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.ch.PublishWithContext(
		pubCtx,
		s.exchange,
		s.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    record.Timestamp,
			Type:         "OrderLineConfirmed",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish order line: %w", err)
	}
	return nil
}

// Close closes the channel and, when the sink dialed it, the connection.
func (s *Sink) Close() error {
	err := s.ch.Close()
	if s.conn != nil {
		err = errors.Join(err, s.conn.Close())
	}
	return err
}
