package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"casedesk/internal/port"
)

// MockFileStorage is a mock implementation of port.FileStorage.
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Download(ctx context.Context, path string) (*port.DownloadResult, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.DownloadResult), args.Error(1)
}

func (m *MockFileStorage) Upload(ctx context.Context, path string, content io.Reader, contentType string) (*port.UploadResult, error) {
	args := m.Called(ctx, path, content, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.UploadResult), args.Error(1)
}
