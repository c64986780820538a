package dispatcher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/evia-dev/comedor-access/backend/internal/domain"
)

// QueueName is the durable queue shift events are published to; cmd/alerts
// consumes it.
const QueueName = "shift_alerts"

type AMQPPublisher struct {
	channel *amqp.Channel
	timeout time.Duration
}

func NewAMQPPublisher(channel *amqp.Channel, timeout time.Duration) *AMQPPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AMQPPublisher{
		channel: channel,
		timeout: timeout,
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event domain.ShiftEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
