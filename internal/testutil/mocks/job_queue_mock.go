package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueCompletion(userID string, at time.Time) error {
	args := m.Called(userID, at)
	return args.Error(0)
}
