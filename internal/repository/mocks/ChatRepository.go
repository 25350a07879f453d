package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/model"
)

// MockChatRepository is a mock type for the ChatRepository type.
type MockChatRepository struct {
	mock.Mock
}

func (_m *MockChatRepository) ListRooms(ctx context.Context) ([]model.ChatRoom, error) {
	ret := _m.Called(ctx)

	var r0 []model.ChatRoom
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.ChatRoom)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) GetRoom(ctx context.Context, chatID int64) (*model.ChatRoom, error) {
	ret := _m.Called(ctx, chatID)

	var r0 *model.ChatRoom
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.ChatRoom)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) InsertRoom(ctx context.Context, room model.ChatRoom) (int64, error) {
	ret := _m.Called(ctx, room)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockChatRepository) UpdateRoom(ctx context.Context, room model.ChatRoom) error {
	ret := _m.Called(ctx, room)
	return ret.Error(0)
}

func (_m *MockChatRepository) DeleteRooms(ctx context.Context, chatIDs []int64) error {
	ret := _m.Called(ctx, chatIDs)
	return ret.Error(0)
}

func (_m *MockChatRepository) LoadMessages(ctx context.Context, chatID int64) ([]model.Message, error) {
	ret := _m.Called(ctx, chatID)

	var r0 []model.Message
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Message)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) InsertMessages(ctx context.Context, messages []model.Message) error {
	ret := _m.Called(ctx, messages)
	return ret.Error(0)
}

func (_m *MockChatRepository) UpdateMessages(ctx context.Context, messages []model.Message) error {
	ret := _m.Called(ctx, messages)
	return ret.Error(0)
}

func (_m *MockChatRepository) DeleteMessages(ctx context.Context, messageIDs []int64) error {
	ret := _m.Called(ctx, messageIDs)
	return ret.Error(0)
}

// NewMockChatRepository creates a new instance of MockChatRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockChatRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChatRepository {
	m := &MockChatRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
