package jobentity

import (
	"time"

	"github.com/cockroachdb/errors/domains"
	"github.com/google/uuid"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

const (
	VocalsStem        = "vocals"
	AccompanimentStem = "accompaniment"
)

// AlreadyFinalizedMark marks attempts to complete or fail a job that has
// already left the processing state. A job is finalized exactly once.
var AlreadyFinalizedMark = domains.New("job_already_finalized")

type Job struct {
	ID               string            `json:"id"`
	OriginalFilename string            `json:"original_filename"`
	UploadPath       string            `json:"upload_path"`
	Status           Status            `json:"status"`
	StemPaths        map[string]string `json:"stem_paths"`
	ErrorMessage     string            `json:"error_message"`
	ErrorDebugLog    string            `json:"error_debug_log"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func NewJob(originalFilename string) Job {
	now := time.Now().UTC()

	return Job{
		ID:               uuid.New().String(),
		OriginalFilename: originalFilename,
		Status:           StatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (j Job) IsProcessing() bool {
	return j.Status == StatusProcessing
}

func (j Job) IsCompleted() bool {
	return j.Status == StatusCompleted
}

func CompleteUpdater(stemPaths map[string]string) JobUpdater {
	return func(job Job) (Job, error) {
		if !job.IsProcessing() {
			return Job{}, mark.Message(AlreadyFinalizedMark, "Job was already finalized and can't be completed")
		}

		job.Status = StatusCompleted
		job.StemPaths = stemPaths
		job.UpdatedAt = time.Now().UTC()
		return job, nil
	}
}

func FailUpdater(message string, debugLog string) JobUpdater {
	return func(job Job) (Job, error) {
		if !job.IsProcessing() {
			return Job{}, mark.Message(AlreadyFinalizedMark, "Job was already finalized and can't be failed")
		}

		job.Status = StatusError
		job.ErrorMessage = message
		job.ErrorDebugLog = debugLog
		job.UpdatedAt = time.Now().UTC()
		return job, nil
	}
}
