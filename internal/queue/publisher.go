package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const taskCompletedQueue = "task.completed"

// Publisher pushes task events to RabbitMQ. Each publish dials a
// short-lived connection; the call volume (one event per completed
// task) does not justify connection pooling. Errors are logged and
// returned so callers can ignore failures without interrupting the
// request flow.
type Publisher struct {
	url string
	log *logrus.Logger
}

// NewPublisher builds a publisher for the given broker URL.
func NewPublisher(url string, log *logrus.Logger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{url: url, log: log}
}

// PublishTaskCompleted publishes ev to the task.completed queue.
// Messages are persistent and the queue is declared durable.
func (p *Publisher) PublishTaskCompleted(ctx context.Context, ev TaskCompletedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so publisher and consumer can start in any order.
	if _, err := ch.QueueDeclare(taskCompletedQueue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", taskCompletedQueue, false, false, pub); err != nil {
		p.log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
