package dummy

import (
	"context"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"sync"
)

var _ jobentity.Store = &JobStore{}

func NewDummyJobStore() *JobStore {
	return &JobStore{
		Unavailable: false,
		State:       make(map[string]jobentity.Job),
	}
}

type JobStore struct {
	Unavailable bool
	State       map[string]jobentity.Job
	mutex       sync.RWMutex
}

func (j *JobStore) CreateJob(_ context.Context, job jobentity.Job) error {
	if j.Unavailable {
		return NetworkFailure
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.State[job.ID] = job
	return nil
}

func (j *JobStore) GetJob(_ context.Context, id string) (jobentity.Job, error) {
	if j.Unavailable {
		return jobentity.Job{}, NetworkFailure
	}

	j.mutex.RLock()
	defer j.mutex.RUnlock()

	job, ok := j.State[id]
	if !ok {
		return jobentity.Job{}, NotFound
	}

	return job, nil
}

func (j *JobStore) UpdateJob(ctx context.Context, id string, updater jobentity.JobUpdater) error {
	if j.Unavailable {
		return NetworkFailure
	}

	job, err := j.GetJob(ctx, id)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to get the job from the store")
	}

	updatedJob, err := updater(job)
	if err != nil {
		return cerr.Wrap(err).Error("Job update function failed")
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.State[id] = updatedJob
	return nil
}
