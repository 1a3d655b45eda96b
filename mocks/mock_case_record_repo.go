package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casedesk/internal/domain"
)

// MockCaseRecordRepo is a mock implementation of port.CaseRecordRepository.
type MockCaseRecordRepo struct {
	mock.Mock
}

func (m *MockCaseRecordRepo) GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockCaseRecordRepo) UpsertFields(ctx context.Context, caseID uuid.UUID, fields map[string]string, source domain.FieldSource) error {
	args := m.Called(ctx, caseID, fields, source)
	return args.Error(0)
}
