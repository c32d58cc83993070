package job_router

import (
	"context"
	"encoding/json"
	"github.com/rabbitmq/amqp091-go"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_message"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
)

func NewJobRouter(jobStore jobentity.Store, splitHandler split.SplitJobHandler) JobRouter {
	return JobRouter{
		jobStore:     jobStore,
		splitHandler: splitHandler,
	}
}

type JobRouter struct {
	jobStore     jobentity.Store
	splitHandler split.SplitJobHandler
}

func (j JobRouter) HandleMessage(message amqp091.Delivery) error {
	switch message.Type {
	case split.JobType:
		return j.handleSplitJob(message)

	default:
		return cerr.Field("message_type", message.Type).
			Error("Unrecognized message type")
	}
}

func (j JobRouter) handleSplitJob(message amqp091.Delivery) error {
	_, err := j.splitHandler.HandleSplitJob(message.Body)
	if err != nil {
		err = cerr.Wrap(err).Error("Failed to handle the split job")
		j.markJobFailed(message.Body, err)
		return err
	}

	return nil
}

// markJobFailed records the failure on the job so that clients polling the
// job see a terminal status. the message is not requeued, so this is the
// job's last stop
func (j JobRouter) markJobFailed(message []byte, handlerErr error) {
	identifier := job_message.JobIdentifier{}
	if unmarshalErr := json.Unmarshal(message, &identifier); unmarshalErr != nil {
		cerr.Log(cerr.Wrap(unmarshalErr).
			Error("Failed to unmarshal the message to mark the job as errored"))
		return
	}

	errctx := cerr.Field("job_id", identifier.JobID)

	if identifier.JobID == "" {
		cerr.Log(errctx.Error("No job ID in the message, can't mark the job as errored"))
		return
	}

	updater := jobentity.FailUpdater(split.ErrorMessage, cerr.Details(handlerErr))
	if updateErr := j.jobStore.UpdateJob(context.Background(), identifier.JobID, updater); updateErr != nil {
		cerr.Log(errctx.Wrap(updateErr).Error("Failed to mark the job as errored"))
	}
}
