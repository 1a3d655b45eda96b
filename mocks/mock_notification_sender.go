package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockNotificationSender is a mock implementation of port.NotificationSender.
type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) Send(ctx context.Context, subject, body string) error {
	args := m.Called(ctx, subject, body)
	return args.Error(0)
}
