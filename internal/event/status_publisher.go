package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StatusPublisher publishes batch status-change events to RabbitMQ.
// Publication is best-effort: callers log failures and continue.
type StatusPublisher struct {
	conn *RabbitMQConnection
}

func NewStatusPublisher(conn *RabbitMQConnection) *StatusPublisher {
	return &StatusPublisher{conn: conn}
}

// PublishStatusChange publishes one event to the batch_status_events
// queue. A nil publisher or nil connection is a no-op so the service
// runs without a broker.
func (p *StatusPublisher) PublishStatusChange(ctx context.Context, evt BatchStatusEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}

	_, err := p.conn.Channel.QueueDeclare(
		BatchStatusQueue, // queue name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",               // exchange
		BatchStatusQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish status event: %w", err)
	}

	slog.Info("Batch status event published",
		"queue", BatchStatusQueue,
		"batch_id", evt.BatchID,
		"to_status", evt.ToStatus,
	)

	return nil
}
