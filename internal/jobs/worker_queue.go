package jobs

import (
	"time"

	"github.com/vytor/cosmosquiz/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	completionPool *worker.Pool
	progress       worker.ProgressRecorder
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(completionPool *worker.Pool, progress worker.ProgressRecorder) JobQueue {
	return &WorkerQueue{
		completionPool: completionPool,
		progress:       progress,
	}
}

func (q *WorkerQueue) EnqueueCompletion(userID string, at time.Time) error {
	return q.completionPool.Submit(&worker.RecordCompletionJob{
		Progress: q.progress,
		UserID:   userID,
		At:       at,
	})
}
