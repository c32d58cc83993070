package dummy

import (
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/rabbitmq"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/worker"
	"sync"
)

var _ rabbitmq.Publisher = &RabbitMQ{}
var _ worker.ConsumerChannel = &RabbitMQ{}
var _ amqp091.Acknowledger = RabbitMQAcknowledger{}

// RabbitMQ plays both sides of the queue: published messages come back out
// of the consume channel, and acks/nacks are counted. The counters are read
// from the test goroutine while the worker runs, hence the lock.
type RabbitMQ struct {
	Unavailable    bool
	MessageChannel chan amqp091.Delivery

	counterLock sync.Mutex
	ackCounter  int
	nackCounter int
}

type RabbitMQAcknowledger struct {
	ack  func()
	nack func()
}

func NewRabbitMQ() *RabbitMQ {
	return &RabbitMQ{
		Unavailable:    false,
		MessageChannel: make(chan amqp091.Delivery, 100),
	}
}

func (r *RabbitMQ) AckCount() int {
	r.counterLock.Lock()
	defer r.counterLock.Unlock()
	return r.ackCounter
}

func (r *RabbitMQ) NackCount() int {
	r.counterLock.Lock()
	defer r.counterLock.Unlock()
	return r.nackCounter
}

func (r *RabbitMQ) Publish(msg amqp091.Publishing) error {
	if r.Unavailable {
		return NetworkFailure
	}

	acknowledger := RabbitMQAcknowledger{
		ack: func() {
			r.counterLock.Lock()
			defer r.counterLock.Unlock()
			r.ackCounter++
		},
		nack: func() {
			r.counterLock.Lock()
			defer r.counterLock.Unlock()
			r.nackCounter++
		},
	}

	r.MessageChannel <- amqp091.Delivery{
		Acknowledger:    acknowledger,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		DeliveryMode:    msg.DeliveryMode,
		Timestamp:       msg.Timestamp,
		Type:            msg.Type,
		Body:            msg.Body,
	}
	return nil
}

func (r *RabbitMQ) Consume(_ string, _ string, _ bool, _ bool, _ bool, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	if r.Unavailable {
		return nil, NetworkFailure
	}

	return r.MessageChannel, nil
}

func (r *RabbitMQ) Close() error {
	return nil
}

func (r RabbitMQAcknowledger) Ack(tag uint64, multiple bool) error {
	r.ack()
	return nil
}

func (r RabbitMQAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	r.nack()
	return nil
}

func (r RabbitMQAcknowledger) Reject(tag uint64, requeue bool) error {
	r.nack()
	return nil
}
