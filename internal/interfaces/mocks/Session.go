package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/model"
)

// MockSession is a mock type for the Session type.
type MockSession struct {
	mock.Mock
}

func (_m *MockSession) ID() string {
	ret := _m.Called()
	return ret.String(0)
}

func (_m *MockSession) Ask(ctx context.Context, text string) error {
	ret := _m.Called(ctx, text)
	return ret.Error(0)
}

func (_m *MockSession) UpdateQuestion(ctx context.Context, text string) error {
	ret := _m.Called(ctx, text)
	return ret.Error(0)
}

func (_m *MockSession) Retry(ctx context.Context, message model.Message) error {
	ret := _m.Called(ctx, message)
	return ret.Error(0)
}

func (_m *MockSession) Edit(ctx context.Context, message model.Message) error {
	ret := _m.Called(ctx, message)
	return ret.Error(0)
}

func (_m *MockSession) UpdateTitle(ctx context.Context, title string) error {
	ret := _m.Called(ctx, title)
	return ret.Error(0)
}

func (_m *MockSession) Export(ctx context.Context) (string, string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.String(1), ret.Error(2)
}

func (_m *MockSession) Snapshot(ctx context.Context) (model.SessionSnapshot, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(model.SessionSnapshot), ret.Error(1)
}

func (_m *MockSession) Subscribe(ctx context.Context) (<-chan model.SessionSnapshot, error) {
	ret := _m.Called(ctx)

	var r0 <-chan model.SessionSnapshot
	switch v := ret.Get(0).(type) {
	case chan model.SessionSnapshot:
		r0 = v
	case <-chan model.SessionSnapshot:
		r0 = v
	}
	return r0, ret.Error(1)
}

func (_m *MockSession) Close() {
	_m.Called()
}

// NewMockSession creates a new instance of MockSession. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSession(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSession {
	m := &MockSession{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
