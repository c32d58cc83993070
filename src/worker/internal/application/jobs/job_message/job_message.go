package job_message

// JobIdentifier is the common body of every queue message. All job state
// lives in the job store; messages only point at it.
type JobIdentifier struct {
	JobID string `json:"job_id"`
}
