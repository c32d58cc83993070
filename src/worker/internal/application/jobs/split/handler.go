package split

import (
	"context"
	"encoding/json"
	"github.com/apex/log"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/job_message"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"os"
	"path/filepath"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "split_stems"
const ErrorMessage string = "Failed to split the audio file into stems"

//counterfeiter:generate . SplitJobHandler
type SplitJobHandler interface {
	HandleSplitJob(message []byte) (JobParams, error)
}

type JobParams struct {
	job_message.JobIdentifier
}

func NewJobHandler(jobStore jobentity.Store, splitter splitter.StemSplitter) JobHandler {
	return JobHandler{
		jobStore: jobStore,
		splitter: splitter,
	}
}

type JobHandler struct {
	jobStore jobentity.Store
	splitter splitter.StemSplitter
}

func (s JobHandler) HandleSplitJob(message []byte) (JobParams, error) {
	params, err := unmarshalMessage(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	errctx := cerr.Field("job_id", params.JobID)

	job, err := s.jobStore.GetJob(context.Background(), params.JobID)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to fetch the job")
	}

	if !job.IsProcessing() {
		return JobParams{}, errctx.Field("job_status", job.Status).
			Error("Job is not in processing status, abort splitting to be safe")
	}

	stemPaths, err := s.splitter.SplitUpload(context.Background(), job)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to split the uploaded file")
	}

	err = s.jobStore.UpdateJob(context.Background(), job.ID, jobentity.CompleteUpdater(stemPaths))
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the split results")
	}

	cleanupUpload(job)

	return params, nil
}

// the upload served its purpose once stems exist. failing to remove it
// only leaks disk, so it never fails the job
func cleanupUpload(job jobentity.Job) {
	if job.UploadPath == "" {
		return
	}

	uploadDir := filepath.Dir(job.UploadPath)
	if err := os.RemoveAll(uploadDir); err != nil {
		log.WithField("upload_dir", uploadDir).
			WithError(err).
			Warn("Failed to clean up the uploaded file")
	}
}

func unmarshalMessage(message []byte) (JobParams, error) {
	params := JobParams{}
	err := json.Unmarshal(message, &params)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	errctx := cerr.Field("job_params", params)

	if params.JobID == "" {
		return JobParams{}, errctx.Error("Missing job ID")
	}

	return params, nil
}
