package worker

import (
	"context"
	"time"

	"github.com/vytor/cosmosquiz/internal/logger"
)

// ProgressRecorder records a finished play session on the user's streak.
// It keeps the worker package free of a services import.
type ProgressRecorder interface {
	MarkCompletion(ctx context.Context, userID string, at time.Time) error
}

// RecordCompletionJob updates daily progress after an attempt completes.
type RecordCompletionJob struct {
	Progress ProgressRecorder
	UserID   string
	At       time.Time
}

func (j *RecordCompletionJob) Name() string { return "record_completion" }

func (j *RecordCompletionJob) Run(ctx context.Context) error {
	logger.FromContext(ctx).WithField("user", j.UserID).Debug("recording completion at %s", j.At.Format(time.RFC3339))
	return j.Progress.MarkCompletion(ctx, j.UserID, j.At)
}
