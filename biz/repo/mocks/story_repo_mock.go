package mocks

import (
	"context"

	"adventure/biz/entity"
	"adventure/biz/repo"

	"github.com/stretchr/testify/mock"
)

// MockStoryRepo is a mock type for the StoryRepo type
type MockStoryRepo struct {
	mock.Mock
}

// MaterializeStory provides a mock function with given fields: ctx, tree, sessionID
func (_m *MockStoryRepo) MaterializeStory(ctx context.Context, tree *entity.StoryTree, sessionID string) (*entity.Story, error) {
	ret := _m.Called(ctx, tree, sessionID)

	var r0 *entity.Story
	if rf, ok := ret.Get(0).(func(context.Context, *entity.StoryTree, string) *entity.Story); ok {
		r0 = rf(ctx, tree, sessionID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*entity.Story)
		}
	}

	return r0, ret.Error(1)
}

// GetCompleteStory provides a mock function with given fields: ctx, storyID
func (_m *MockStoryRepo) GetCompleteStory(ctx context.Context, storyID uint64) (*entity.CompleteStory, error) {
	ret := _m.Called(ctx, storyID)

	var r0 *entity.CompleteStory
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*entity.CompleteStory)
	}

	return r0, ret.Error(1)
}

// NewMockStoryRepo creates a new instance of MockStoryRepo.
func NewMockStoryRepo(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepo {
	m := &MockStoryRepo{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repo.StoryRepo = (*MockStoryRepo)(nil)
