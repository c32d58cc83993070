package separationusecase

import (
	"context"
	"encoding/json"
	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/rabbitmq/amqp091-go"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/errors"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/rabbitmq"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SplitJobType is the queue message type the worker dispatches on.
const SplitJobType = "split_stems"

const DispatchFailedMessage = "Failed to dispatch the separation job"

type Usecase struct {
	jobStore    jobentity.Store
	publisher   rabbitmq.Publisher
	uploadsRoot string
}

func NewUsecase(jobStore jobentity.Store, publisher rabbitmq.Publisher, uploadsRootPath string) Usecase {
	return Usecase{
		jobStore:    jobStore,
		publisher:   publisher,
		uploadsRoot: uploadsRootPath,
	}
}

// CreateJob stores the upload on disk, records the job, and queues it for
// splitting. The upload is written verbatim, zero length included - whether
// the contents decode as audio is the engine's call to make, not the API's.
func (u Usecase) CreateJob(ctx context.Context, originalFilename string, contents io.Reader) (jobentity.Job, *api.Error) {
	sanitizedFilename, err := sanitizeFilename(originalFilename)
	if err != nil {
		return jobentity.Job{}, api.CommitError(err,
			separationerrors.BadUploadCode,
			"The uploaded file has an unusable filename. Please rename the file and try again")
	}

	job := jobentity.NewJob(sanitizedFilename)

	uploadPath, err := u.writeUpload(job.ID, sanitizedFilename, contents)
	if err != nil {
		return jobentity.Job{}, api.CommitError(err,
			separationerrors.UploadFailedCode,
			"Failed to store the uploaded file. Please try again")
	}

	job.UploadPath = uploadPath

	if err := u.jobStore.CreateJob(ctx, job); err != nil {
		u.removeUploadDir(job.ID)
		return jobentity.Job{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to record the separation job. Please contact the developer")
	}

	if err := u.publishSplitJob(job.ID); err != nil {
		err = errors.Wrap(err, "Failed to publish the split job")
		u.markJobDispatchFailed(job, err)
		return jobentity.Job{}, api.CommitError(err,
			separationerrors.JobDispatchFailedCode,
			"The file was uploaded but the separation couldn't be started. Please try again")
	}

	return job, nil
}

func (u Usecase) GetJob(ctx context.Context, jobID string) (jobentity.Job, *api.Error) {
	job, err := u.jobStore.GetJob(ctx, jobID)
	if err != nil {
		err = errors.Wrap(err, "Failed to get job from the store")
		switch {
		case markers.Is(err, jobstorage.JobNotFound):
			return jobentity.Job{}, api.CommitError(err,
				separationerrors.JobNotFoundCode,
				"This separation job can't be found")

		case markers.Is(err, jobstorage.DefaultErrorMark):
			fallthrough
		default:
			return jobentity.Job{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to fetch the separation job")
		}
	}

	return job, nil
}

// sanitizeFilename reduces a client supplied filename to a lowercased base
// name. Clients don't get a say in the directory layout.
func sanitizeFilename(originalFilename string) (string, error) {
	normalized := strings.ReplaceAll(originalFilename, "\\", "/")
	baseName := strings.ToLower(path.Base(normalized))

	if baseName == "" || baseName == "." || baseName == ".." || baseName == "/" {
		return "", errors.New("Filename reduces to no usable name")
	}

	return baseName, nil
}

func (u Usecase) writeUpload(jobID string, fileName string, contents io.Reader) (string, error) {
	uploadDir, err := filepath.Abs(filepath.Join(u.uploadsRoot, jobID))
	if err != nil {
		return "", errors.Wrap(err, "Failed to resolve the upload dir to an absolute path")
	}

	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "Failed to create the upload dir")
	}

	uploadPath := filepath.Join(uploadDir, fileName)

	destFile, err := os.Create(uploadPath)
	if err != nil {
		return "", errors.Wrap(err, "Failed to create the upload file")
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, contents); err != nil {
		u.removeUploadDir(jobID)
		return "", errors.Wrap(err, "Failed to write the upload file")
	}

	return uploadPath, nil
}

func (u Usecase) removeUploadDir(jobID string) {
	uploadDir := filepath.Join(u.uploadsRoot, jobID)
	if err := os.RemoveAll(uploadDir); err != nil {
		log.WithField("upload_dir", uploadDir).
			WithError(err).
			Warn("Failed to clean up the upload dir")
	}
}

type JobIdentifier struct {
	JobID string `json:"job_id"`
}

func (u Usecase) publishSplitJob(jobID string) error {
	jsonBytes, err := json.Marshal(JobIdentifier{
		JobID: jobID,
	})

	if err != nil {
		return errors.Wrap(err, "Failed to marshal the job ID for the queue msg")
	}

	publishMsg := amqp091.Publishing{
		Type: SplitJobType,
		Body: jsonBytes,
	}

	err = u.publisher.Publish(publishMsg)
	if err != nil {
		return errors.Wrap(err, "Failed to publish message to rabbitmq")
	}

	return nil
}

func (u Usecase) markJobDispatchFailed(job jobentity.Job, publishErr error) {
	updater := jobentity.FailUpdater(DispatchFailedMessage, publishErr.Error())

	err := u.jobStore.UpdateJob(context.Background(), job.ID, updater)
	if err != nil {
		log.WithField("job_id", job.ID).
			WithError(err).
			Error("Failed to mark the job as errored after a dispatch failure")
	}
}
