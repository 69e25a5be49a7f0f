package jobs

import "time"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueCompletion(userID string, at time.Time) error
}
