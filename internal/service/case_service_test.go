package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedesk/internal/domain"
	"casedesk/internal/service"
	"casedesk/mocks"
)

func newCaseService() (service.CaseService, *mocks.MockCaseRepo, *mocks.MockCaseRecordRepo, *mocks.MockConflictRepo) {
	caseRepo := new(mocks.MockCaseRepo)
	recordRepo := new(mocks.MockCaseRecordRepo)
	conflictRepo := new(mocks.MockConflictRepo)
	return service.NewCaseService(caseRepo, recordRepo, conflictRepo), caseRepo, recordRepo, conflictRepo
}

func TestCreateCase_DefaultsFolderToClientName(t *testing.T) {
	svc, caseRepo, _, _ := newCaseService()

	caseRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Case")).Return(nil)

	c, err := svc.Create(context.Background(), &service.CreateCaseInput{ClientName: "  Jan Kowalski  "})

	require.NoError(t, err)
	assert.Equal(t, "Jan Kowalski", c.ClientName)
	assert.Equal(t, "Jan Kowalski", c.FolderName)
	assert.NotEqual(t, uuid.Nil, c.ID)
}

func TestCreateCase_RequiresClientName(t *testing.T) {
	svc, _, _, _ := newCaseService()

	_, err := svc.Create(context.Background(), &service.CreateCaseInput{ClientName: "   "})
	assert.Error(t, err)
}

func TestUpdateRecord_NormalizesFieldNames(t *testing.T) {
	svc, caseRepo, recordRepo, _ := newCaseService()
	caseID := uuid.New()

	caseRepo.On("GetByID", mock.Anything, caseID).Return(&domain.Case{ID: caseID}, nil)

	var written map[string]string
	recordRepo.On("UpsertFields", mock.Anything, caseID, mock.Anything, domain.FieldSourceManual).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(map[string]string)
		}).Return(nil)

	err := svc.UpdateRecord(context.Background(), caseID, map[string]string{
		"  Applicant_First_Name ": " Anna ",
		"applicant_last_name":     "Nowak",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"applicant_first_name": "Anna",
		"applicant_last_name":  "Nowak",
	}, written)
}

func TestResolveConflicts_UseOCRWritesRecordFields(t *testing.T) {
	svc, _, recordRepo, conflictRepo := newCaseService()
	caseID := uuid.New()

	conflicts := []domain.FieldConflict{
		{ID: uuid.New(), CaseID: caseID, FieldName: "applicant_first_name",
			OCRValue: "Ana", ManualValue: "Anna", Status: domain.ConflictStatusPending},
		{ID: uuid.New(), CaseID: caseID, FieldName: "applicant_last_name",
			OCRValue: "Novak", ManualValue: "Nowak", Status: domain.ConflictStatusPending},
	}
	ids := []uuid.UUID{conflicts[0].ID, conflicts[1].ID}

	conflictRepo.On("GetByIDs", mock.Anything, ids).Return(conflicts, nil)
	recordRepo.On("UpsertFields", mock.Anything, caseID, map[string]string{
		"applicant_first_name": "Ana",
		"applicant_last_name":  "Novak",
	}, domain.FieldSourceOCR).Return(nil)
	conflictRepo.On("ResolveBatch", mock.Anything, ids, domain.ConflictStatusUseOCR, "reviewed").
		Return(2, nil)

	result, err := svc.ResolveConflicts(context.Background(), &service.ResolveConflictsInput{
		ConflictIDs: ids,
		Resolution:  domain.ConflictStatusUseOCR,
		Notes:       "reviewed",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Resolved)
	assert.Equal(t, 2, result.FieldsUpdated)
}

func TestResolveConflicts_KeepManualLeavesRecordAlone(t *testing.T) {
	svc, _, recordRepo, conflictRepo := newCaseService()
	caseID := uuid.New()

	conflict := domain.FieldConflict{ID: uuid.New(), CaseID: caseID,
		FieldName: "applicant_first_name", OCRValue: "Ana", ManualValue: "Anna",
		Status: domain.ConflictStatusPending}
	ids := []uuid.UUID{conflict.ID}

	conflictRepo.On("GetByIDs", mock.Anything, ids).Return([]domain.FieldConflict{conflict}, nil)
	conflictRepo.On("ResolveBatch", mock.Anything, ids, domain.ConflictStatusKeepManual, "").
		Return(1, nil)

	result, err := svc.ResolveConflicts(context.Background(), &service.ResolveConflictsInput{
		ConflictIDs: ids,
		Resolution:  domain.ConflictStatusKeepManual,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Resolved)
	assert.Equal(t, 0, result.FieldsUpdated)
	recordRepo.AssertNotCalled(t, "UpsertFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveConflicts_RejectsInvalidResolution(t *testing.T) {
	svc, _, _, _ := newCaseService()

	_, err := svc.ResolveConflicts(context.Background(), &service.ResolveConflictsInput{
		ConflictIDs: []uuid.UUID{uuid.New()},
		Resolution:  domain.ConflictStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidResolution)
}

func TestResolveConflicts_UnknownIDs(t *testing.T) {
	svc, _, _, conflictRepo := newCaseService()
	ids := []uuid.UUID{uuid.New()}

	conflictRepo.On("GetByIDs", mock.Anything, ids).Return([]domain.FieldConflict{}, nil)

	_, err := svc.ResolveConflicts(context.Background(), &service.ResolveConflictsInput{
		ConflictIDs: ids,
		Resolution:  domain.ConflictStatusIgnored,
	})
	assert.ErrorIs(t, err, domain.ErrConflictNotFound)
}

func TestExportWorkbook_BuildsFilenameFromClient(t *testing.T) {
	svc, caseRepo, recordRepo, conflictRepo := newCaseService()
	caseID := uuid.New()

	caseRepo.On("GetByID", mock.Anything, caseID).
		Return(&domain.Case{ID: caseID, ClientName: "Jan Kowalski"}, nil)
	recordRepo.On("GetRecord", mock.Anything, caseID).
		Return(map[string]string{"applicant_first_name": "Jan"}, nil)
	conflictRepo.On("ListByCase", mock.Anything, caseID, domain.ConflictStatusPending).
		Return([]domain.FieldConflict{}, nil)

	data, filename, err := svc.ExportWorkbook(context.Background(), caseID)

	require.NoError(t, err)
	assert.Equal(t, "jan-kowalski-case-record.xlsx", filename)
	assert.NotEmpty(t, data)
}
