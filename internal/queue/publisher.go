package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const orderQueueName = "order.placed"

// Publisher delivers events to RabbitMQ.  Publishing is best effort:
// an unreachable broker must never fail the order that triggered the
// event, so callers log the returned error and move on.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher builds a publisher for the given broker URL.  An empty
// URL disables publishing entirely.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// OrderPlaced publishes one event to the order.placed queue, declared
// durable so messages survive broker restarts.
func (p *Publisher) OrderPlaced(ctx context.Context, ev OrderPlacedEvent) error {
	if p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("amqp dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("amqp channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(orderQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn("amqp queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", orderQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Warn("amqp publish failed", zap.Error(err))
	}
	return err
}
