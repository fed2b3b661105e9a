package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked is returned when the broker refuses a message
var ErrPublishNacked = errors.New("publish NACK from broker")

// confirmation resolves once the broker acks or nacks a single publish
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// sender hands one message to the broker and returns its own confirmation
type sender interface {
	send(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error)
}

// confirmChannel is a channel in confirm mode. Each publish gets a deferred
// confirmation keyed by its delivery tag, so a publish abandoned by its
// caller can never satisfy another caller's wait.
type confirmChannel struct {
	ch       *amqp.Channel
	exchange string
}

func (c confirmChannel) send(ctx context.Context, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx, c.exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

// Client publishes to one durable topic exchange with publisher confirms
type Client struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	out      sender
	exchange string
	logger   *slog.Logger
}

// Dial connects to url and declares exchange
func Dial(url, exchange string, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	return &Client{
		conn:     conn,
		ch:       ch,
		out:      confirmChannel{ch: ch, exchange: exchange},
		exchange: exchange,
		logger:   logger,
	}, nil
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Publish sends payload persistently and waits for the broker to confirm it.
// Publishes from different goroutines run concurrently.
func (c *Client) Publish(ctx context.Context, key string, payload any) error {
	now := time.Now()
	body, err := encode(key, payload, now)
	if err != nil {
		return err
	}

	conf, err := c.out.send(ctx, key, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    now,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", key, err)
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrPublishNacked, key)
	}
	c.logger.Debug("event published", "key", key)
	return nil
}

// TableSource consumes table requests bound under FloorBinding
type TableSource struct {
	client   *Client
	queue    string
	prefetch int
}

func NewTableSource(client *Client, queue string) *TableSource {
	return &TableSource{client: client, queue: queue, prefetch: 10}
}

// Events declares the queue and streams decoded table events until ctx ends.
// Malformed messages are rejected without requeue.
func (s *TableSource) Events(ctx context.Context) (<-chan models.TableEvent, error) {
	ch, err := s.client.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", s.queue, err)
	}
	if err := ch.QueueBind(s.queue, FloorBinding, s.client.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to bind queue %s: %w", s.queue, err)
	}
	if err := ch.Qos(s.prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, s.queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to consume %s: %w", s.queue, err)
	}

	out := make(chan models.TableEvent)
	go func() {
		defer close(out)
		defer ch.Close()

		log := s.client.logger
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					log.Warn("table event delivery channel closed", "queue", s.queue)
					return
				}

				ev, err := decodeTableEvent(d.Body, time.Now())
				if err != nil {
					log.Warn("rejecting table event", "routing_key", d.RoutingKey, "error", err)
					_ = d.Nack(false, false)
					continue
				}

				select {
				case out <- ev:
					_ = d.Ack(false)
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()

	return out, nil
}
