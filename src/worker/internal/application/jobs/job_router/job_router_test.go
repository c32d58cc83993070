package job_router_test

import (
	"context"
	"encoding/json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rabbitmq/amqp091-go"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/integration_test/dummy"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_message"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_router"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
)

// stubSplitHandler records the messages it was handed and fails on demand.
type stubSplitHandler struct {
	err              error
	receivedMessages [][]byte
}

var _ split.SplitJobHandler = &stubSplitHandler{}

func (s *stubSplitHandler) HandleSplitJob(message []byte) (split.JobParams, error) {
	s.receivedMessages = append(s.receivedMessages, message)

	if s.err != nil {
		return split.JobParams{}, s.err
	}

	params := split.JobParams{}
	if err := json.Unmarshal(message, &params); err != nil {
		return split.JobParams{}, err
	}

	return params, nil
}

var _ = Describe("JobRouter", func() {
	var (
		jobStore     *dummy.JobStore
		splitHandler *stubSplitHandler
		router       job_router.JobRouter
		job          jobentity.Job
	)

	BeforeEach(func() {
		jobStore = dummy.NewDummyJobStore()
		splitHandler = &stubSplitHandler{}
		router = job_router.NewJobRouter(jobStore, splitHandler)

		job = jobentity.NewJob("my jamz.mp3")
		Expect(jobStore.CreateJob(context.Background(), job)).To(Succeed())
	})

	var splitMessage = func(jobID string) amqp091.Delivery {
		body, err := json.Marshal(job_message.JobIdentifier{JobID: jobID})
		Expect(err).NotTo(HaveOccurred())

		return amqp091.Delivery{
			Type: split.JobType,
			Body: body,
		}
	}

	Describe("Split messages", func() {
		It("routes the message body to the split handler", func() {
			message := splitMessage(job.ID)

			Expect(router.HandleMessage(message)).To(Succeed())

			Expect(splitHandler.receivedMessages).To(HaveLen(1))
			Expect(splitHandler.receivedMessages[0]).To(Equal(message.Body))
		})
	})

	Describe("Unrecognized messages", func() {
		It("errors without touching any handler", func() {
			message := amqp091.Delivery{
				Type: "make_coffee",
				Body: []byte(`{}`),
			}

			Expect(router.HandleMessage(message)).NotTo(Succeed())
			Expect(splitHandler.receivedMessages).To(BeEmpty())
		})
	})

	Describe("Split handler failures", func() {
		BeforeEach(func() {
			splitHandler.err = cerr.Field("reason", "corrupted audio").
				Error("the splitter blew up")
		})

		It("errors the job so pollers see a terminal status", func() {
			Expect(router.HandleMessage(splitMessage(job.ID))).NotTo(Succeed())

			storedJob := jobStore.State[job.ID]
			Expect(storedJob.Status).To(Equal(jobentity.StatusError))
			Expect(storedJob.ErrorMessage).To(Equal(split.ErrorMessage))
			Expect(storedJob.ErrorDebugLog).To(ContainSubstring("corrupted audio"))
		})

		It("still errors when the message has no job to mark", func() {
			Expect(router.HandleMessage(splitMessage(""))).NotTo(Succeed())

			storedJob := jobStore.State[job.ID]
			Expect(storedJob.Status).To(Equal(jobentity.StatusProcessing))
		})

		It("still errors when the job can't be found", func() {
			Expect(router.HandleMessage(splitMessage("no-such-job"))).NotTo(Succeed())

			storedJob := jobStore.State[job.ID]
			Expect(storedJob.Status).To(Equal(jobentity.StatusProcessing))
		})
	})
})
