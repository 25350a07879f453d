package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"multichat/backend/internal/model"
)

// MockSettingsService is a mock type for the SettingsService type.
type MockSettingsService struct {
	mock.Mock
}

func (_m *MockSettingsService) FetchPlatforms(ctx context.Context) ([]model.Platform, error) {
	ret := _m.Called(ctx)

	var r0 []model.Platform
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Platform)
	}
	return r0, ret.Error(1)
}

func (_m *MockSettingsService) UpdatePlatforms(ctx context.Context, platforms []model.Platform) error {
	ret := _m.Called(ctx, platforms)
	return ret.Error(0)
}

func (_m *MockSettingsService) FetchTheme(ctx context.Context) (model.ThemeSetting, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(model.ThemeSetting), ret.Error(1)
}

func (_m *MockSettingsService) UpdateTheme(ctx context.Context, theme model.ThemeSetting) error {
	ret := _m.Called(ctx, theme)
	return ret.Error(0)
}

// NewMockSettingsService creates a new instance of MockSettingsService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSettingsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSettingsService {
	m := &MockSettingsService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
