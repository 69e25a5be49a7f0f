package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cosmosquiz/internal/jobs"
	"github.com/vytor/cosmosquiz/internal/worker"
)

type recorder struct {
	mu    sync.Mutex
	users []string
	done  chan struct{}
}

func (r *recorder) MarkCompletion(_ context.Context, userID string, _ time.Time) error {
	r.mu.Lock()
	r.users = append(r.users, userID)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestWorkerQueue_EnqueueCompletion(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	rec := &recorder{done: make(chan struct{}, 2)}
	q := jobs.NewWorkerQueue(pool, rec)

	require.NoError(t, q.EnqueueCompletion("u1", time.Now()))
	require.NoError(t, q.EnqueueCompletion("u2", time.Now()))

	for i := 0; i < 2; i++ {
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("completion job did not run")
		}
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"u1", "u2"}, rec.users)
}
