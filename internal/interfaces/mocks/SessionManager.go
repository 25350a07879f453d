package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/interfaces"
	"multichat/backend/internal/model"
)

// MockSessionManager is a mock type for the SessionManager type.
type MockSessionManager struct {
	mock.Mock
}

func (_m *MockSessionManager) Open(ctx context.Context, chatID int64, platforms []model.APIType) (interfaces.Session, error) {
	ret := _m.Called(ctx, chatID, platforms)

	var r0 interfaces.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(interfaces.Session)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionManager) Get(sessionID string) (interfaces.Session, error) {
	ret := _m.Called(sessionID)

	var r0 interfaces.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(interfaces.Session)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionManager) Close(sessionID string) error {
	ret := _m.Called(sessionID)
	return ret.Error(0)
}

// NewMockSessionManager creates a new instance of MockSessionManager. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSessionManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSessionManager {
	m := &MockSessionManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
