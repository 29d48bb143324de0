package ports

import (
	"context"

	"github.com/cristianoliveira/tab-recall/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of TabPlatform for testing.
// It uses testify/mock so tests can configure return values and assert calls.
//
// Example usage:
//
//	platform := new(MockPlatform)
//	platform.On("TabExists", mock.Anything, domain.TabID(2)).Return(false, nil)
//	platform.On("ActivateTab", mock.Anything, domain.TabID(1)).Return(nil)
type MockPlatform struct {
	mock.Mock
}

// ActiveTab returns a mocked active tab.
//
//	mock.On("ActiveTab", mock.Anything).Return(domain.TabRef{ID: 1, WindowID: 5}, true, nil)
func (m *MockPlatform) ActiveTab(ctx context.Context) (domain.TabRef, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.TabRef), args.Bool(1), args.Error(2)
}

// TabExists returns a mocked existence check.
func (m *MockPlatform) TabExists(ctx context.Context, id domain.TabID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// ActivateTab returns a mocked activation result.
func (m *MockPlatform) ActivateTab(ctx context.Context, id domain.TabID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
