package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/llm"
)

// MockModelService is a mock type for the ModelService type.
type MockModelService struct {
	mock.Mock
}

func (_m *MockModelService) List(ctx context.Context) (*llm.ListModelsResponse, error) {
	ret := _m.Called(ctx)

	var r0 *llm.ListModelsResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*llm.ListModelsResponse)
	}
	return r0, ret.Error(1)
}

func (_m *MockModelService) Pull(ctx context.Context, req *llm.PullModelRequest, ch chan<- llm.PullStatus) error {
	ret := _m.Called(ctx, req, ch)

	if rf, ok := ret.Get(0).(func(context.Context, *llm.PullModelRequest, chan<- llm.PullStatus) error); ok {
		return rf(ctx, req, ch)
	}
	return ret.Error(0)
}

// NewMockModelService creates a new instance of MockModelService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockModelService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockModelService {
	m := &MockModelService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
