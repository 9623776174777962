// Package broker is the single place that knows the broker's connection
// parameters, declares queues durable, publishes to the default exchange
// by routing key, and consumes with per-message, multi-handler
// acknowledgement.
//
// Grounded on Tim275-oms/common/broker/broker.go for the Connect/Channel
// shape (minus its dead-letter-exchange retry machinery, which spec.md's
// reject-without-requeue contract has no use for), and on
// original_source/common/mq_consumer.py's RabbitMQConsumer for the
// with_handler/consume multi-handler-per-message pattern.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrConnect is returned when the connect-retry budget is exhausted.
var ErrConnect = errors.New("broker: failed to connect")

// Handler processes one decoded delivery. An error causes the whole
// delivery to be rejected without requeue; all handlers must succeed for
// the delivery to be acknowledged.
type Handler func(ctx context.Context, body []byte) error

// Adapter owns a single AMQP connection and channel.
type Adapter struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// Connect dials RabbitMQ at host:port with user/pass, retrying with a
// fixed 2s backoff until connectTimeout elapses. Unrecoverable auth/host
// errors still have to wait out the same budget — amqp091-go gives us no
// cheap way to distinguish "will never succeed" from "not up yet", so
// every failure is treated as transient until the budget runs out, then
// surfaced as ErrConnect.
func Connect(ctx context.Context, user, pass, host, port string, connectTimeout time.Duration, logger *zap.Logger) (*Adapter, error) {
	address := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	deadline := time.Now().Add(connectTimeout)
	var lastErr error
	for {
		conn, err := amqp.DialConfig(address, amqp.Config{Heartbeat: 10 * time.Second})
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				return &Adapter{conn: conn, ch: ch, logger: logger}, nil
			}
			conn.Close()
			lastErr = chErr
		} else {
			lastErr = err
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %v", ErrConnect, lastErr)
		}
		logger.Warn("broker connect failed, retrying", zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// Publish declares queue durable (idempotent) and publishes body to it via
// the default exchange, matching the original's
// mq_channel.default_exchange.publish(routing_key=queue).
func (a *Adapter) Publish(ctx context.Context, queue string, body []byte) error {
	if _, err := a.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("broker: declare queue %s: %w", queue, err)
	}
	return a.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
	})
}

// Consume declares queue durable and registers a manual-ack consumer that
// processes one delivery at a time: handlers run in order within a single
// processing scope, all handlers succeeding acks the message once, any
// handler erroring rejects the message without requeue and skips the
// rest. The next delivery is not read off the channel until the current
// one's handlers have all run and it has been acked or nacked — deliveries
// are never re-entered concurrently for this consumer. Blocks until ctx
// is cancelled or the underlying delivery channel closes.
func (a *Adapter) Consume(ctx context.Context, queue string, handlers ...Handler) error {
	if _, err := a.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("broker: declare queue %s: %w", queue, err)
	}

	msgs, err := a.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("broker: consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			a.handleOne(ctx, queue, d, handlers)
		}
	}
}

func (a *Adapter) handleOne(ctx context.Context, queue string, d amqp.Delivery, handlers []Handler) {
	for _, h := range handlers {
		if err := h(ctx, d.Body); err != nil {
			a.logger.Error("handler failed, rejecting without requeue",
				zap.String("queue", queue), zap.Error(err))
			if nackErr := d.Nack(false, false); nackErr != nil {
				a.logger.Error("failed to nack delivery", zap.Error(nackErr))
			}
			return
		}
	}
	if err := d.Ack(false); err != nil {
		a.logger.Error("failed to ack delivery", zap.String("queue", queue), zap.Error(err))
	}
}

// Shutdown closes the channel then the connection, in that order. Safe to
// call more than once.
func (a *Adapter) Shutdown(ctx context.Context) error {
	var firstErr error
	if a.ch != nil {
		if err := a.ch.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
