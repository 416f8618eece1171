package mocks

import (
	"context"

	"adventure/biz/repo"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/mock"
)

// MockCompletionModel is a mock type for the CompletionModel type
type MockCompletionModel struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, input, opts
func (_m *MockCompletionModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	ret := _m.Called(ctx, input)

	var r0 *schema.Message
	if rf, ok := ret.Get(0).(func(context.Context, []*schema.Message) *schema.Message); ok {
		r0 = rf(ctx, input)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*schema.Message)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []*schema.Message) error); ok {
		r1 = rf(ctx, input)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockCompletionModel creates a new instance of MockCompletionModel.
func NewMockCompletionModel(t interface {
	mock.TestingT
	Helper()
}) *MockCompletionModel {
	m := &MockCompletionModel{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repo.CompletionModel = (*MockCompletionModel)(nil)
