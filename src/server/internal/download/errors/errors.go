package downloaderrors

import (
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
)

const (
	InvalidPathCode     = api.ErrorCode("invalid_download_path")
	FileNotFoundCode    = api.ErrorCode("file_not_found")
	JobNotCompletedCode = api.ErrorCode("job_not_completed")
	StemsMissingCode    = api.ErrorCode("stems_not_found")
)
