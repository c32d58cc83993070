package jobstorage

import (
	"context"
	"github.com/cockroachdb/errors"
	"github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
	"sync"
)

// MemoryDB holds jobs in process memory. Records don't survive a restart and
// aren't visible to other processes, so it only suits tests and single
// process setups.
var _ jobentity.Store = &MemoryDB{}

type MemoryDB struct {
	mutex sync.RWMutex
	jobs  map[string]jobentity.Job
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		jobs: map[string]jobentity.Job{},
	}
}

func (m *MemoryDB) CreateJob(_ context.Context, job jobentity.Job) error {
	if job.ID == "" {
		return mark.Message(DefaultErrorMark, "Job ID is not defined on job")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.jobs[job.ID]; ok {
		return mark.Message(JobAlreadyExists, "A job with this ID already exists")
	}

	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *MemoryDB) GetJob(_ context.Context, id string) (jobentity.Job, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return jobentity.Job{}, mark.Message(JobNotFound, "Job is not found")
	}

	return cloneJob(job), nil
}

func (m *MemoryDB) UpdateJob(_ context.Context, id string, updater jobentity.JobUpdater) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return mark.Message(JobNotFound, "Can't find the job to update")
	}

	updatedJob, err := updater(cloneJob(job))
	if err != nil {
		return errors.Wrap(err, "The updater failed to make changes to the job")
	}

	m.jobs[id] = cloneJob(updatedJob)
	return nil
}

func cloneJob(job jobentity.Job) jobentity.Job {
	clone := job

	if job.StemPaths != nil {
		clone.StemPaths = make(map[string]string, len(job.StemPaths))
		for stem, path := range job.StemPaths {
			clone.StemPaths[stem] = path
		}
	}

	return clone
}
