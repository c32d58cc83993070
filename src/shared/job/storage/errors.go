package jobstorage

import "github.com/cockroachdb/errors/domains"

var (
	JobNotFound      = domains.New("job_not_found")
	JobAlreadyExists = domains.New("job_already_exists")
	UpdateConflict   = domains.New("job_update_conflict")
	UnmarshalMark    = domains.New("job_unmarshal_fail")
	DefaultErrorMark = domains.New("default_error")
)
