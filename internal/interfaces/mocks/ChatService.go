package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/model"
)

// MockChatService is a mock type for the ChatService type.
type MockChatService struct {
	mock.Mock
}

func (_m *MockChatService) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	ret := _m.Called(ctx)

	var r0 []model.ChatRoom
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ChatRoom)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatService) GetFullChat(ctx context.Context, chatID int64) (*model.FullChat, error) {
	ret := _m.Called(ctx, chatID)

	var r0 *model.FullChat
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.FullChat)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatService) DeleteChats(ctx context.Context, chatIDs []int64) error {
	ret := _m.Called(ctx, chatIDs)
	return ret.Error(0)
}

// NewMockChatService creates a new instance of MockChatService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockChatService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChatService {
	m := &MockChatService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
