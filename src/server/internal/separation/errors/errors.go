package separationerrors

import (
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
)

const (
	JobNotFoundCode       = api.ErrorCode("job_not_found")
	BadUploadCode         = api.ErrorCode("bad_upload")
	UploadFailedCode      = api.ErrorCode("upload_failed")
	JobDispatchFailedCode = api.ErrorCode("job_dispatch_failed")
)
