package rabbitmq

import (
	"context"
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

var _ Publisher = &QueuePublisher{}

//counterfeiter:generate . Publisher
type Publisher interface {
	Publish(msg amqp091.Publishing) error
}

// QueuePublisher pushes job messages onto a single durable queue. Messages
// are published persistent so they survive a broker restart. If the broker
// drops the channel, the next Publish redials once before giving up.
type QueuePublisher struct {
	url       string
	queueName string
	conn      *amqp091.Connection
	channel   *amqp091.Channel
}

func NewQueuePublisher(rabbitMQURL string, queueName string) (*QueuePublisher, error) {
	publisher := &QueuePublisher{
		url:       rabbitMQURL,
		queueName: queueName,
	}

	if err := publisher.connect(); err != nil {
		return nil, errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	return publisher, nil
}

func (q *QueuePublisher) connect() error {
	if q.conn != nil {
		_ = q.conn.Close()
	}

	q.conn = nil
	q.channel = nil

	conn, err := amqp091.Dial(q.url)
	if err != nil {
		return errors.Wrap(err, "Failed to dial RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to open a RabbitMQ channel")
	}

	_, err = channel.QueueDeclare(
		q.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to declare the queue")
	}

	q.conn = conn
	q.channel = channel
	return nil
}

func (q *QueuePublisher) publishOnce(msg amqp091.Publishing) error {
	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp091.Persistent

	return q.channel.PublishWithContext(
		context.Background(),
		"",
		q.queueName,
		true,
		false,
		msg,
	)
}

func (q *QueuePublisher) Publish(msg amqp091.Publishing) error {
	err := q.publishOnce(msg)
	if err == nil {
		return nil
	}

	publishErr := errors.Wrap(err, "Failed to publish message to the queue")

	if !errors.Is(err, amqp091.ErrClosed) {
		return publishErr
	}

	if err := q.connect(); err != nil {
		log.WithError(err).
			Error("Unable to reconnect to RabbitMQ")
		return publishErr
	}

	return q.publishOnce(msg)
}

func (q *QueuePublisher) Close() error {
	if q.conn == nil {
		return nil
	}

	if err := q.conn.Close(); err != nil {
		return errors.Wrap(err, "Failed to close the RabbitMQ connection")
	}

	q.conn = nil
	q.channel = nil
	return nil
}
