package dummy

import (
	"github.com/cockroachdb/errors"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
)

var NetworkFailure = errors.New("The network is down")
var NotFound = mark.Message(jobstorage.JobNotFound, "Job is not found")
