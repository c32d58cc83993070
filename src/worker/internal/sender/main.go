package main

import (
	"encoding/json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/shared/config/dev"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/rabbitmq"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_message"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split"
	"os"
)

// Publishes a split job for an existing job record so it can be rerun
// against a dev worker without going through the upload endpoint.
func main() {
	if len(os.Args) < 2 {
		panic("usage: sender <job-id>")
	}

	publisher, err := rabbitmq.NewQueuePublisher(dev.RabbitMQHost, dev.RabbitMQQueueName)
	if err != nil {
		panic(err)
	}
	defer publisher.Close()

	jobBody, err := json.Marshal(job_message.JobIdentifier{
		JobID: os.Args[1],
	})
	if err != nil {
		panic(err)
	}

	err = publisher.Publish(amqp091.Publishing{
		Type: split.JobType,
		Body: jobBody,
	})
	if err != nil {
		panic(err)
	}
}
