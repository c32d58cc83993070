package worker

import (
	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_router"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"sync"
)

type ConsumerChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

// QueueWorker drains job messages off the queue and hands each one to the
// job router. Acks are manual: a message is acked only after the router
// returns, and a failed message is dropped rather than requeued since the
// job record already carries the failure.
type QueueWorker struct {
	channel     ConsumerChannel
	channelLock sync.Mutex
	jobRouter   job_router.JobRouter
	queueName   string
}

func NewQueueWorker(channel ConsumerChannel, queueName string, jobRouter job_router.JobRouter) QueueWorker {
	return QueueWorker{
		channel:   channel,
		queueName: queueName,
		jobRouter: jobRouter,
	}
}

func NewQueueWorkerFromConnection(conn *amqp091.Connection, queueName string, jobRouter job_router.JobRouter) (QueueWorker, error) {
	rabbitChannel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return QueueWorker{}, cerr.Wrap(err).Error("Failed to open a channel on the RabbitMQ connection")
	}

	queue, err := rabbitChannel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = rabbitChannel.Close()
		return QueueWorker{}, cerr.Wrap(err).Error("Failed to declare the job queue")
	}

	return NewQueueWorker(rabbitChannel, queue.Name, jobRouter), nil
}

// Start blocks and consumes until Stop is called. A clean shutdown
// returns nil.
func (q *QueueWorker) Start() error {
	log.WithField("queue_name", q.queueName).Info("Starting worker")

	q.channelLock.Lock()
	if q.channel == nil {
		q.channelLock.Unlock()
		return cerr.Error("Worker has been stopped")
	}

	defer q.channel.Close()

	deliveries, err := q.channel.Consume(
		q.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	q.channelLock.Unlock()

	if err != nil {
		return cerr.Field("queue_name", q.queueName).
			Wrap(err).Error("Failed to start consuming from the queue")
	}

	for delivery := range deliveries {
		q.processDelivery(delivery)
	}

	return nil
}

func (q *QueueWorker) processDelivery(delivery amqp091.Delivery) {
	logger := log.WithField("message_type", delivery.Type)
	logger.Info("Handling message")

	if err := q.jobRouter.HandleMessage(delivery); err != nil {
		err = cerr.Field("message_type", delivery.Type).
			Wrap(err).Error("Failed to process message")

		cerr.Log(err)

		if err := delivery.Nack(false, false); err != nil {
			logger.Error("Failed to nack message")
		}

		return
	}

	logger.Info("Successfully processed message")
	if err := delivery.Ack(false); err != nil {
		logger.Error("Failed to ack message")
	}
}

// Stop closes the channel, which ends the delivery stream Start is ranging
// over. Stopping an already stopped worker is a no-op.
func (q *QueueWorker) Stop() {
	q.channelLock.Lock()
	defer q.channelLock.Unlock()

	if q.channel == nil {
		return
	}

	_ = q.channel.Close()
	q.channel = nil
}
