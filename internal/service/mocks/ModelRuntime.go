package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/llm"
)

// MockModelRuntime is a mock type for the ModelRuntime type.
type MockModelRuntime struct {
	mock.Mock
}

func (_m *MockModelRuntime) ListModels(ctx context.Context) (*llm.ListModelsResponse, error) {
	ret := _m.Called(ctx)

	var r0 *llm.ListModelsResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*llm.ListModelsResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockModelRuntime) PullModel(ctx context.Context, req *llm.PullModelRequest, ch chan<- llm.PullStatus) error {
	ret := _m.Called(ctx, req, ch)

	if rf, ok := ret.Get(0).(func(context.Context, *llm.PullModelRequest, chan<- llm.PullStatus) error); ok {
		return rf(ctx, req, ch)
	}
	return ret.Error(0)
}

// NewMockModelRuntime creates a new instance of MockModelRuntime. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockModelRuntime(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockModelRuntime {
	m := &MockModelRuntime{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
