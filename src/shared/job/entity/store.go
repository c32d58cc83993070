package jobentity

import (
	"context"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

type JobUpdater func(job Job) (Job, error)

//counterfeiter:generate . Store
type Store interface {
	CreateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	UpdateJob(ctx context.Context, id string, updater JobUpdater) error
}
