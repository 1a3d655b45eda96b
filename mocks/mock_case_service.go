package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casedesk/internal/domain"
	"casedesk/internal/service"
)

// MockCaseService is a mock implementation of service.CaseService.
type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Create(ctx context.Context, input *service.CreateCaseInput) (*domain.Case, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) List(ctx context.Context, offset, limit int) ([]domain.Case, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Case), args.Int(1), args.Error(2)
}

func (m *MockCaseService) GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCaseService) UpdateRecord(ctx context.Context, caseID uuid.UUID, fields map[string]string) error {
	args := m.Called(ctx, caseID, fields)
	return args.Error(0)
}

func (m *MockCaseService) ListConflicts(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error) {
	args := m.Called(ctx, caseID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldConflict), args.Error(1)
}

func (m *MockCaseService) ResolveConflicts(ctx context.Context, input *service.ResolveConflictsInput) (*service.ResolveConflictsResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolveConflictsResult), args.Error(1)
}

func (m *MockCaseService) ExportWorkbook(ctx context.Context, caseID uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
