package mocks

import (
	"context"

	"adventure/biz/entity"
	"adventure/biz/repo"

	"github.com/stretchr/testify/mock"
)

// MockJobRepo is a mock type for the JobRepo type
type MockJobRepo struct {
	mock.Mock
}

// CreateJob provides a mock function with given fields: ctx, job
func (_m *MockJobRepo) CreateJob(ctx context.Context, job *entity.StoryJob) error {
	ret := _m.Called(ctx, job)
	return ret.Error(0)
}

// GetJob provides a mock function with given fields: ctx, jobID, sessionID
func (_m *MockJobRepo) GetJob(ctx context.Context, jobID, sessionID string) (*entity.StoryJob, error) {
	ret := _m.Called(ctx, jobID, sessionID)

	var r0 *entity.StoryJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.StoryJob)
	}

	return r0, ret.Error(1)
}

// MarkProcessing provides a mock function with given fields: ctx, jobID
func (_m *MockJobRepo) MarkProcessing(ctx context.Context, jobID string) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

// MarkCompleted provides a mock function with given fields: ctx, jobID, storyID
func (_m *MockJobRepo) MarkCompleted(ctx context.Context, jobID string, storyID uint64) error {
	ret := _m.Called(ctx, jobID, storyID)
	return ret.Error(0)
}

// MarkFailed provides a mock function with given fields: ctx, jobID, reason
func (_m *MockJobRepo) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ret := _m.Called(ctx, jobID, reason)
	return ret.Error(0)
}

// FailUnfinishedJobs provides a mock function with given fields: ctx, reason
func (_m *MockJobRepo) FailUnfinishedJobs(ctx context.Context, reason string) (int64, error) {
	ret := _m.Called(ctx, reason)

	var r0 int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}

// NewMockJobRepo creates a new instance of MockJobRepo.
func NewMockJobRepo(t interface {
	mock.TestingT
	Helper()
}) *MockJobRepo {
	m := &MockJobRepo{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repo.JobRepo = (*MockJobRepo)(nil)
