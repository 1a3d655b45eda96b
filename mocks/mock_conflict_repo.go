package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casedesk/internal/domain"
)

// MockConflictRepo is a mock implementation of port.ConflictRepository.
type MockConflictRepo struct {
	mock.Mock
}

func (m *MockConflictRepo) CreateBatch(ctx context.Context, conflicts []domain.FieldConflict) error {
	args := m.Called(ctx, conflicts)
	return args.Error(0)
}

func (m *MockConflictRepo) ListByCase(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error) {
	args := m.Called(ctx, caseID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldConflict), args.Error(1)
}

func (m *MockConflictRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldConflict, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldConflict), args.Error(1)
}

func (m *MockConflictRepo) ResolveBatch(ctx context.Context, ids []uuid.UUID, status domain.ConflictStatus, notes string) (int, error) {
	args := m.Called(ctx, ids, status, notes)
	return args.Int(0), args.Error(1)
}
