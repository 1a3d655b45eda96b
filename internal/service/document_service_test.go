package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedesk/internal/domain"
	"casedesk/internal/port"
	"casedesk/internal/service"
	"casedesk/mocks"
)

type documentServiceMocks struct {
	docRepo      *mocks.MockDocumentRepo
	caseRepo     *mocks.MockCaseRepo
	recordRepo   *mocks.MockCaseRecordRepo
	conflictRepo *mocks.MockConflictRepo
	storage      *mocks.MockFileStorage
	extractor    *mocks.MockTextExtractor
	notifier     *mocks.MockNotificationSender
}

func newDocumentService() (service.DocumentService, *documentServiceMocks) {
	m := &documentServiceMocks{
		docRepo:      new(mocks.MockDocumentRepo),
		caseRepo:     new(mocks.MockCaseRepo),
		recordRepo:   new(mocks.MockCaseRecordRepo),
		conflictRepo: new(mocks.MockConflictRepo),
		storage:      new(mocks.MockFileStorage),
		extractor:    new(mocks.MockTextExtractor),
		notifier:     new(mocks.MockNotificationSender),
	}
	svc := service.NewDocumentService(
		m.docRepo, m.caseRepo, m.recordRepo, m.conflictRepo,
		m.storage, m.extractor, m.notifier, "/CASES", 50)
	return svc, m
}

func processingDoc(attempts int) *domain.Document {
	return &domain.Document{
		ID:           uuid.New(),
		CaseID:       uuid.New(),
		Name:         "passport.pdf",
		StoragePath:  "/CASES/Smith/passport.pdf",
		ContentType:  "application/pdf",
		DocumentKind: domain.KindPassport,
		PersonRole:   domain.RoleApplicant,
		OCRStatus:    domain.OCRStatusProcessing,
		OCRAttempts:  attempts,
		OCRResult:    json.RawMessage("{}"),
	}
}

func TestProcessDocument_SuccessAppliesFieldsToCase(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)

	m.storage.On("Download", mock.Anything, "/CASES/Smith/passport.pdf").
		Return(&port.DownloadResult{Content: []byte("pdf-bytes"), ResolvedPath: "/CASES/Smith/passport.pdf"}, nil)
	m.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{
			Confidence:   0.92,
			DocumentKind: domain.KindPassport,
			Fields: map[string]string{
				"full_name":       "John Smith",
				"passport_number": "X123",
			},
		}, nil)
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)
	m.recordRepo.On("GetRecord", mock.Anything, doc.CaseID).Return(map[string]string{}, nil)

	var written map[string]string
	m.recordRepo.On("UpsertFields", mock.Anything, doc.CaseID, mock.Anything, domain.FieldSourceOCR).
		Run(func(args mock.Arguments) {
			written = args.Get(2).(map[string]string)
		}).Return(nil)
	m.docRepo.On("SetAppliedToCase", mock.Anything, doc.ID, true).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "completed", detail.Outcome)
	assert.Equal(t, 0.92, detail.Confidence)
	assert.Equal(t, domain.OCRStatusCompleted, doc.OCRStatus)
	assert.Empty(t, doc.OCRError)

	require.NotNil(t, written)
	assert.Equal(t, "John", written["applicant_first_name"])
	assert.Equal(t, "Smith", written["applicant_last_name"])
	assert.Equal(t, "X123", written["applicant_passport_number"])

	m.conflictRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	m.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDocument_PersistsCorrectedPath(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)
	doc.StoragePath = "Smith/passport.pdf"

	// The path resolver roots the bare folder path before download, and the
	// provider reports the canonical casing back.
	m.storage.On("Download", mock.Anything, "/CASES/Smith/passport.pdf").
		Return(&port.DownloadResult{Content: []byte("pdf-bytes"), ResolvedPath: "/CASES/smith/Passport.pdf"}, nil)
	m.docRepo.On("UpdateStoragePath", mock.Anything, doc.ID, "/CASES/smith/Passport.pdf").Return(nil)
	m.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Confidence: 0.8, DocumentKind: domain.KindPassport,
			Fields: map[string]string{"passport_number": "X1"}}, nil)
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)
	m.recordRepo.On("GetRecord", mock.Anything, doc.CaseID).Return(map[string]string{}, nil)
	m.recordRepo.On("UpsertFields", mock.Anything, doc.CaseID, mock.Anything, domain.FieldSourceOCR).Return(nil)
	m.docRepo.On("SetAppliedToCase", mock.Anything, doc.ID, true).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "completed", detail.Outcome)
	assert.Equal(t, "/CASES/smith/Passport.pdf", doc.StoragePath)
	m.docRepo.AssertCalled(t, "UpdateStoragePath", mock.Anything, doc.ID, "/CASES/smith/Passport.pdf")
}

func TestProcessDocument_PermanentErrorFailsImmediately(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)

	m.storage.On("Download", mock.Anything, doc.StoragePath).
		Return(nil, domain.ErrPathNotFound)
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)
	m.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "failed", detail.Outcome)
	assert.False(t, detail.RetryScheduled)
	assert.Equal(t, domain.OCRStatusFailed, doc.OCRStatus)
	assert.Contains(t, doc.OCRError, "not found")

	m.notifier.AssertCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	m.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestProcessDocument_TransientErrorRequeues(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)

	m.storage.On("Download", mock.Anything, doc.StoragePath).
		Return(&port.DownloadResult{Content: []byte("pdf"), ResolvedPath: doc.StoragePath}, nil)
	m.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(nil, strErr("504 Gateway Timeout"))
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "requeued", detail.Outcome)
	assert.True(t, detail.RetryScheduled)
	assert.Equal(t, domain.OCRStatusQueued, doc.OCRStatus)

	m.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDocument_TransientErrorAtCeilingFails(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(3) // claimed for the third and final attempt

	m.storage.On("Download", mock.Anything, doc.StoragePath).
		Return(&port.DownloadResult{Content: []byte("pdf"), ResolvedPath: doc.StoragePath}, nil)
	m.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(nil, strErr("connection reset by peer"))
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)
	m.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "failed", detail.Outcome)
	assert.Equal(t, domain.OCRStatusFailed, doc.OCRStatus)
	m.notifier.AssertCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessDocument_DisagreementRecordsConflict(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)

	m.storage.On("Download", mock.Anything, doc.StoragePath).
		Return(&port.DownloadResult{Content: []byte("pdf"), ResolvedPath: doc.StoragePath}, nil)
	m.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Confidence: 0.85, DocumentKind: domain.KindPassport,
			Fields: map[string]string{"first_name": "Ana"}}, nil)
	m.docRepo.On("UpdateOCRResult", mock.Anything, doc).Return(nil)
	m.recordRepo.On("GetRecord", mock.Anything, doc.CaseID).
		Return(map[string]string{"applicant_first_name": "Anna"}, nil)

	var recorded []domain.FieldConflict
	m.conflictRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).([]domain.FieldConflict)
		}).Return(nil)
	m.docRepo.On("SetAppliedToCase", mock.Anything, doc.ID, true).Return(nil)

	detail := svc.ProcessDocument(context.Background(), doc, 3)

	assert.Equal(t, "completed", detail.Outcome)
	require.Len(t, recorded, 1)
	assert.Equal(t, "applicant_first_name", recorded[0].FieldName)
	assert.Equal(t, "Ana", recorded[0].OCRValue)
	assert.Equal(t, "Anna", recorded[0].ManualValue)
	assert.Equal(t, domain.ConflictStatusPending, recorded[0].Status)

	// No direct write happened for the disputed field.
	m.recordRepo.AssertNotCalled(t, "UpsertFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyToCase_OverwriteBypassesConflicts(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)
	doc.OCRStatus = domain.OCRStatusCompleted
	doc.OCRResult, _ = json.Marshal(domain.ExtractionResult{
		Confidence:   0.85,
		DocumentKind: domain.KindPassport,
		Fields:       map[string]string{"first_name": "Ana"},
	})

	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	m.recordRepo.On("GetRecord", mock.Anything, doc.CaseID).
		Return(map[string]string{"applicant_first_name": "Anna"}, nil)
	m.recordRepo.On("UpsertFields", mock.Anything, doc.CaseID,
		map[string]string{"applicant_first_name": "Ana"}, domain.FieldSourceOCR).Return(nil)
	m.docRepo.On("SetAppliedToCase", mock.Anything, doc.ID, true).Return(nil)

	result, err := svc.ApplyToCase(context.Background(), &service.ApplyToCaseInput{
		DocumentID:      doc.ID,
		OverwriteManual: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.AppliedFields)
	assert.Equal(t, 0, result.Conflicts)
	m.conflictRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestApplyToCase_RequiresCompletedExtraction(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(1)
	doc.OCRStatus = domain.OCRStatusQueued

	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	_, err := svc.ApplyToCase(context.Background(), &service.ApplyToCaseInput{DocumentID: doc.ID})
	assert.ErrorIs(t, err, domain.ErrDocumentNotExtracted)
}

func TestRegister_RejectsUnsupportedExtension(t *testing.T) {
	svc, m := newDocumentService()
	caseID := uuid.New()
	m.caseRepo.On("GetByID", mock.Anything, caseID).Return(&domain.Case{ID: caseID}, nil)

	_, err := svc.Register(context.Background(), &service.RegisterDocumentInput{
		CaseID:      caseID,
		StoragePath: "Smith/notes.docx",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestRegister_NormalizesStoragePath(t *testing.T) {
	svc, m := newDocumentService()
	caseID := uuid.New()
	m.caseRepo.On("GetByID", mock.Anything, caseID).Return(&domain.Case{ID: caseID}, nil)

	var created *domain.Document
	m.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.Document)
		}).Return(nil)

	doc, err := svc.Register(context.Background(), &service.RegisterDocumentInput{
		CaseID:      caseID,
		StoragePath: "Smith/file.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "/CASES/Smith/file.pdf", doc.StoragePath)
	assert.Equal(t, "file.pdf", doc.Name)
	assert.Equal(t, domain.KindUnknown, doc.DocumentKind)
	assert.Equal(t, domain.RoleApplicant, doc.PersonRole)
	assert.Equal(t, domain.OCRStatusQueued, doc.OCRStatus)
	assert.Same(t, created, doc)
}

func TestUpload_QueuesDocumentForExtraction(t *testing.T) {
	svc, m := newDocumentService()
	caseID := uuid.New()
	m.caseRepo.On("GetByID", mock.Anything, caseID).
		Return(&domain.Case{ID: caseID, FolderName: "Smith"}, nil)
	m.storage.On("Upload", mock.Anything, "/CASES/Smith/passport.pdf", mock.Anything, "application/pdf").
		Return(&port.UploadResult{Path: "/CASES/Smith/passport.pdf", Size: 3}, nil)
	m.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)

	doc, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		CaseID:   caseID,
		FileName: "passport.pdf",
		Content:  strings.NewReader("pdf"),
		Size:     3,
	})

	require.NoError(t, err)
	assert.Equal(t, "/CASES/Smith/passport.pdf", doc.StoragePath)
	assert.Equal(t, domain.OCRStatusQueued, doc.OCRStatus)
	m.docRepo.AssertCalled(t, "Create", mock.Anything, doc)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	svc, m := newDocumentService()
	caseID := uuid.New()
	m.caseRepo.On("GetByID", mock.Anything, caseID).
		Return(&domain.Case{ID: caseID, FolderName: "Smith"}, nil)

	_, err := svc.Upload(context.Background(), &service.UploadDocumentInput{
		CaseID:   caseID,
		FileName: "huge.pdf",
		Content:  strings.NewReader("x"),
		Size:     51 * 1024 * 1024,
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestEnqueue_RequiresStoragePath(t *testing.T) {
	svc, m := newDocumentService()
	doc := processingDoc(0)
	doc.StoragePath = ""
	m.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)

	_, err := svc.Enqueue(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrMissingStoragePath)
}

type strErr string

func (e strErr) Error() string { return string(e) }
