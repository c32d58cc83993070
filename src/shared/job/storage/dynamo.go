package jobstorage

import (
	"context"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/dynamo"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
	"time"
)

const (
	JobsTable = "SeparationJobs"
	idKey     = "id"
)

var _ jobentity.Store = DynamoDB{}

type DynamoDB struct {
	dynamoDB dynamolib.DynamoDBWrapper
}

func NewDynamoDB(dynamoDB dynamolib.DynamoDBWrapper) DynamoDB {
	return DynamoDB{
		dynamoDB: dynamoDB,
	}
}

type dbJob struct {
	ID               string            `dynamo:"id"`
	OriginalFilename string            `dynamo:"original_filename"`
	UploadPath       string            `dynamo:"upload_path"`
	Status           string            `dynamo:"status"`
	StemPaths        map[string]string `dynamo:"stem_paths"`
	ErrorMessage     string            `dynamo:"error_message"`
	ErrorDebugLog    string            `dynamo:"error_debug_log"`
	CreatedAt        time.Time         `dynamo:"created_at"`
	UpdatedAt        time.Time         `dynamo:"updated_at"`
}

func (d dbJob) toEntity() jobentity.Job {
	return jobentity.Job{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		UploadPath:       d.UploadPath,
		Status:           jobentity.Status(d.Status),
		StemPaths:        d.StemPaths,
		ErrorMessage:     d.ErrorMessage,
		ErrorDebugLog:    d.ErrorDebugLog,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func jobItem(job jobentity.Job) map[string]any {
	return map[string]any{
		idKey:               job.ID,
		"original_filename": job.OriginalFilename,
		"upload_path":       job.UploadPath,
		"status":            string(job.Status),
		"stem_paths":        job.StemPaths,
		"error_message":     job.ErrorMessage,
		"error_debug_log":   job.ErrorDebugLog,
		"created_at":        job.CreatedAt,
		"updated_at":        job.UpdatedAt,
	}
}

func (d DynamoDB) CreateJob(ctx context.Context, job jobentity.Job) error {
	if job.ID == "" {
		return mark.Message(DefaultErrorMark, "Job ID is not defined on job")
	}

	err := d.dynamoDB.Table(JobsTable).
		Put(jobItem(job)).
		If("attribute_not_exists(id)").
		RunWithContext(ctx)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return mark.Wrap(err, JobAlreadyExists, "A job with this ID already exists")
		}

		return mark.Wrap(err, DefaultErrorMark, "Failed to put the job in the DB")
	}

	return nil
}

func (d DynamoDB) GetJob(ctx context.Context, id string) (jobentity.Job, error) {
	value := dbJob{}
	err := d.dynamoDB.Table(JobsTable).
		Get(idKey, id).
		OneWithContext(ctx, &value)

	if err != nil {
		switch {
		case errors.Is(err, dynamo.ErrNotFound):
			return jobentity.Job{}, mark.Wrap(err, JobNotFound, "Job is not found")
		default:
			return jobentity.Job{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch job")
		}
	}

	return value.toEntity(), nil
}

func (d DynamoDB) UpdateJob(ctx context.Context, id string, updater jobentity.JobUpdater) error {
	job, err := d.GetJob(ctx, id)
	if err != nil {
		return errors.Wrap(err, "Can't find the job to update")
	}

	updatedJob, err := updater(job)
	if err != nil {
		return errors.Wrap(err, "The updater failed to make changes to the job")
	}

	err = d.dynamoDB.Table(JobsTable).
		Put(jobItem(updatedJob)).
		If("'status' = ?", string(job.Status)).
		RunWithContext(ctx)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return mark.Wrap(err, UpdateConflict, "The job changed while it was being updated")
		}

		return mark.Wrap(err, DefaultErrorMark, "Unable to set the job")
	}

	return nil
}

func isConditionalCheckFailed(err error) bool {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}

	return false
}
