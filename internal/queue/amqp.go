package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

// AMQPPublisher publishes events to a durable topic exchange, routed by
// event type.
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

var _ Publisher = (*AMQPPublisher)(nil)

// DialAMQP connects and declares the exchange.
func DialAMQP(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue: connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("queue: open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("queue: declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends e as JSON. Channels are not safe for concurrent publishing,
// so calls are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("queue: encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish(
		p.exchange,
		e.Type, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Type:         e.Type,
			Body:         body,
		},
	)
}

// Consume declares a durable queue bound to the exchange with bindingKey and
// starts a manual-ack consumer on it.
func (p *AMQPPublisher) Consume(queueName, bindingKey string) (<-chan amqp.Delivery, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q, err := p.ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("queue: declare queue %s: %w", queueName, err)
	}

	if err := p.ch.QueueBind(q.Name, bindingKey, p.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue: bind %s to %s: %w", q.Name, p.exchange, err)
	}

	msgs, err := p.ch.Consume(
		q.Name,
		"",    // consumer tag
		false, // autoAck = false for reliability
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("queue: register consumer: %w", err)
	}
	return msgs, nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// HandleDeliveries runs h for each delivery until ctx is done or the channel
// closes. Undecodable messages are dropped; a failed handler gets one
// redelivery before the message is dropped.
func HandleDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery, h Handler, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleDelivery(d, h, logger)
		}
	}
}

func handleDelivery(d amqp.Delivery, h Handler, logger *slog.Logger) {
	var e Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Warn("invalid event payload", "routing_key", d.RoutingKey, "error", err)
		settle(logger, d, "nack", d.Nack(false, false))
		return
	}

	if err := h(e); err != nil {
		requeue := !d.Redelivered
		logger.Warn("event handler failed", "type", e.Type, "requeue", requeue, "error", err)
		settle(logger, d, "nack", d.Nack(false, requeue))
		return
	}

	settle(logger, d, "ack", d.Ack(false))
}

// settle logs a failed ack or nack; it usually means the channel is gone.
func settle(logger *slog.Logger, d amqp.Delivery, op string, err error) {
	if err != nil {
		logger.Warn("failed to "+op+" delivery", "delivery_tag", d.DeliveryTag, "routing_key", d.RoutingKey, "error", err)
	}
}
