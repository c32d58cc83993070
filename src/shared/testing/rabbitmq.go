package testing

import (
	"encoding/json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/rabbitmq"
	"sync"
)

func MakeRabbitMQConnection() *amqp091.Connection {
	return ExpectSuccess(amqp091.Dial(RabbitMQHost))
}

// ResetRabbitMQ declares the queue if it's not there yet and drops whatever
// a previous spec left on it.
func ResetRabbitMQ(conn *amqp091.Connection) {
	channel := ExpectSuccess(conn.Channel())
	ExpectSuccess(channel.QueueDeclare(RabbitMQQueueName, true, false, false, false, nil))
	ExpectSuccess(channel.QueuePurge(RabbitMQQueueName, false))
}

func AfterSuiteRabbitMQ(conn *amqp091.Connection) {
	channel := ExpectSuccess(conn.Channel())
	ExpectSuccess(channel.QueueDelete(RabbitMQQueueName, false, false, false))
}

func MakeRabbitMQPublisher() *rabbitmq.QueuePublisher {
	return ExpectSuccess(rabbitmq.NewQueuePublisher(RabbitMQHost, RabbitMQQueueName))
}

type ReceivedMessage struct {
	Type    string
	Message map[string]interface{}
}

// RabbitMQConsumer records every message that lands on the test queue so
// specs can assert on what was published. Messages are auto-acked.
type RabbitMQConsumer struct {
	channel     *amqp091.Channel
	channelLock sync.Mutex
	queueName   string

	recordLock sync.Mutex
	received   []ReceivedMessage
	err        error
}

func NewRabbitMQConsumer(conn *amqp091.Connection) RabbitMQConsumer {
	channel := ExpectSuccess(conn.Channel())

	return RabbitMQConsumer{
		channel:   channel,
		queueName: RabbitMQQueueName,
	}
}

func (r *RabbitMQConsumer) AsyncStart() {
	r.channelLock.Lock()
	if r.channel == nil {
		r.channelLock.Unlock()
		return
	}

	deliveries := ExpectSuccess(r.channel.Consume(
		r.queueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	))
	r.channelLock.Unlock()

	for delivery := range deliveries {
		r.record(delivery)
	}
}

func (r *RabbitMQConsumer) record(delivery amqp091.Delivery) {
	r.recordLock.Lock()
	defer r.recordLock.Unlock()

	if r.err != nil {
		return
	}

	body := map[string]interface{}{}
	if err := json.Unmarshal(delivery.Body, &body); err != nil {
		r.err = err
		return
	}

	r.received = append(r.received, ReceivedMessage{
		Type:    delivery.Type,
		Message: body,
	})
}

func (r *RabbitMQConsumer) Stop() {
	r.channelLock.Lock()
	defer r.channelLock.Unlock()

	if r.channel == nil {
		return
	}

	_ = r.channel.Close()
	r.channel = nil
}

// Unload returns everything received since the last call and clears the log.
func (r *RabbitMQConsumer) Unload() ([]ReceivedMessage, error) {
	r.recordLock.Lock()
	defer r.recordLock.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	received := r.received
	r.received = nil
	return received, nil
}
