package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"casedesk/internal/domain"
	"casedesk/internal/fieldmap"
	"casedesk/internal/ocr"
	"casedesk/internal/port"
	"casedesk/internal/reconcile"
	"casedesk/internal/storage/paths"
)

// RegisterDocumentInput is the DTO for registering a document that already
// exists in remote storage.
type RegisterDocumentInput struct {
	CaseID       uuid.UUID
	Name         string
	StoragePath  string
	DocumentKind domain.DocumentKind
	PersonRole   domain.PersonRole
}

// UploadDocumentInput is the DTO for uploading a new file into a case folder.
type UploadDocumentInput struct {
	CaseID       uuid.UUID
	FileName     string
	Content      io.Reader
	Size         int64
	DocumentKind domain.DocumentKind
	PersonRole   domain.PersonRole
}

// ApplyToCaseInput is the DTO for applying a completed extraction to the case
// record.
type ApplyToCaseInput struct {
	DocumentID      uuid.UUID
	OverwriteManual bool
}

// ApplyToCaseResult summarizes one reconciliation pass.
type ApplyToCaseResult struct {
	AppliedFields int `json:"applied_fields"`
	Conflicts     int `json:"conflicts"`
	Unchanged     int `json:"unchanged"`
}

// DocumentService defines the document intake and OCR pipeline contract.
type DocumentService interface {
	Register(ctx context.Context, input *RegisterDocumentInput) (*domain.Document, error)
	Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByCase(ctx context.Context, caseID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	Enqueue(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ApplyToCase(ctx context.Context, input *ApplyToCaseInput) (*ApplyToCaseResult, error)
	Delete(ctx context.Context, docID uuid.UUID) error

	// ProcessDocument runs one extraction attempt end to end. The doc must
	// already be claimed (processing status, attempt counter incremented).
	// It is called by the queue worker.
	ProcessDocument(ctx context.Context, doc *domain.Document, maxAttempts int) domain.RunDetail
}

type documentService struct {
	docRepo      port.DocumentRepository
	caseRepo     port.CaseRepository
	recordRepo   port.CaseRecordRepository
	conflictRepo port.ConflictRepository
	storage      port.FileStorage
	extractor    port.TextExtractor
	notifier     port.NotificationSender
	rootPrefix   string
	maxFileSize  int64
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	caseRepo port.CaseRepository,
	recordRepo port.CaseRecordRepository,
	conflictRepo port.ConflictRepository,
	storage port.FileStorage,
	extractor port.TextExtractor,
	notifier port.NotificationSender,
	rootPrefix string,
	maxFileSizeMB int64,
) DocumentService {
	if rootPrefix == "" {
		rootPrefix = paths.DefaultRoot
	}
	return &documentService{
		docRepo:      docRepo,
		caseRepo:     caseRepo,
		recordRepo:   recordRepo,
		conflictRepo: conflictRepo,
		storage:      storage,
		extractor:    extractor,
		notifier:     notifier,
		rootPrefix:   rootPrefix,
		maxFileSize:  maxFileSizeMB * 1024 * 1024,
	}
}

func (s *documentService) Register(ctx context.Context, input *RegisterDocumentInput) (*domain.Document, error) {
	if _, err := s.caseRepo.GetByID(ctx, input.CaseID); err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.StoragePath)), ".")
	contentType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	name := input.Name
	if name == "" {
		name = filepath.Base(input.StoragePath)
	}

	doc := &domain.Document{
		ID:           uuid.New(),
		CaseID:       input.CaseID,
		Name:         name,
		StoragePath:  paths.Normalize(s.rootPrefix, input.StoragePath),
		ContentType:  contentType,
		DocumentKind: kindOrUnknown(input.DocumentKind),
		PersonRole:   roleOrApplicant(input.PersonRole),
		OCRStatus:    domain.OCRStatusQueued,
		OCRResult:    json.RawMessage("{}"),
	}

	log.Printf("documentService.Register: registering document %s at %s (case %s)",
		doc.ID, doc.StoragePath, doc.CaseID)

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return doc, nil
}

func (s *documentService) Upload(ctx context.Context, input *UploadDocumentInput) (*domain.Document, error) {
	c, err := s.caseRepo.GetByID(ctx, input.CaseID)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	contentType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if s.maxFileSize > 0 && input.Size > s.maxFileSize {
		return nil, domain.ErrFileTooLarge
	}

	path := paths.JoinCase(s.rootPrefix, c.FolderName, input.FileName)

	uploaded, err := s.storage.Upload(ctx, path, input.Content, contentType)
	if err != nil {
		log.Printf("documentService.Upload: upload to %s failed: %v", path, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	doc := &domain.Document{
		ID:           uuid.New(),
		CaseID:       input.CaseID,
		Name:         input.FileName,
		StoragePath:  uploaded.Path,
		ContentType:  contentType,
		DocumentKind: kindOrUnknown(input.DocumentKind),
		PersonRole:   roleOrApplicant(input.PersonRole),
		OCRStatus:    domain.OCRStatusQueued,
		OCRResult:    json.RawMessage("{}"),
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	log.Printf("documentService.Upload: uploaded %s (%d bytes) as document %s",
		uploaded.Path, uploaded.Size, doc.ID)
	return doc, nil
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) ListByCase(ctx context.Context, caseID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, 0, err
	}
	return s.docRepo.ListByCase(ctx, caseID, offset, limit)
}

func (s *documentService) Enqueue(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.StoragePath == "" {
		return nil, domain.ErrMissingStoragePath
	}
	return s.docRepo.MarkQueued(ctx, docID)
}

func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	return s.docRepo.Delete(ctx, docID)
}

// ProcessDocument performs the core pipeline: path resolution, download,
// extraction, result saving, and reconciliation into the case record. Errors
// are classified to decide between requeue and terminal failure.
func (s *documentService) ProcessDocument(ctx context.Context, doc *domain.Document, maxAttempts int) domain.RunDetail {
	detail := domain.RunDetail{DocumentID: doc.ID, Name: doc.Name}

	if doc.StoragePath == "" {
		return s.handleOCRError(ctx, doc, detail, domain.ErrMissingStoragePath, maxAttempts)
	}

	path := paths.Normalize(s.rootPrefix, doc.StoragePath)

	downloaded, err := s.storage.Download(ctx, path)
	if err != nil {
		return s.handleOCRError(ctx, doc, detail, fmt.Errorf("downloading %s: %w", path, err), maxAttempts)
	}

	// The provider may report a corrected canonical path (casing, renames).
	// Persist it so later attempts skip the stale one.
	if downloaded.ResolvedPath != "" && downloaded.ResolvedPath != doc.StoragePath {
		if err := s.docRepo.UpdateStoragePath(ctx, doc.ID, downloaded.ResolvedPath); err != nil {
			log.Printf("documentService.ProcessDocument: failed to persist resolved path for %s: %v", doc.ID, err)
		} else {
			doc.StoragePath = downloaded.ResolvedPath
		}
	}

	output, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:    downloaded.Content,
		ContentType:  doc.ContentType,
		DocumentKind: doc.DocumentKind,
		PersonRole:   doc.PersonRole,
	})
	if err != nil {
		return s.handleOCRError(ctx, doc, detail, err, maxAttempts)
	}

	result := domain.ExtractionResult{
		Confidence:   output.Confidence,
		DocumentKind: output.DocumentKind,
		Fields:       output.Fields,
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return s.handleOCRError(ctx, doc, detail, fmt.Errorf("encoding extraction result: %w", err), maxAttempts)
	}

	doc.OCRStatus = domain.OCRStatusCompleted
	doc.OCRError = ""
	doc.OCRResult = resultJSON
	// Adopt the detected kind when the declared one was unknown.
	if (doc.DocumentKind == "" || doc.DocumentKind == domain.KindUnknown) &&
		output.DocumentKind != "" && output.DocumentKind != domain.KindUnknown {
		doc.DocumentKind = output.DocumentKind
	}

	if err := s.docRepo.UpdateOCRResult(ctx, doc); err != nil {
		log.Printf("documentService.ProcessDocument: failed to save results for %s: %v", doc.ID, err)
		detail.Outcome = "failed"
		detail.Error = err.Error()
		return detail
	}

	log.Printf("documentService.ProcessDocument: document %s extracted (kind=%s, confidence=%.2f)",
		doc.ID, doc.DocumentKind, output.Confidence)

	applied, err := s.applyExtraction(ctx, doc, &result, false)
	if err != nil {
		// Extraction itself succeeded. Reconciliation can be re-run via
		// ApplyToCase, so do not fail the document.
		log.Printf("documentService.ProcessDocument: reconciliation failed for %s: %v", doc.ID, err)
	} else if applied.Conflicts > 0 {
		log.Printf("documentService.ProcessDocument: document %s raised %d field conflicts", doc.ID, applied.Conflicts)
	}

	detail.Outcome = "completed"
	detail.Confidence = output.Confidence
	return detail
}

func (s *documentService) ApplyToCase(ctx context.Context, input *ApplyToCaseInput) (*ApplyToCaseResult, error) {
	doc, err := s.docRepo.GetByID(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.OCRStatus != domain.OCRStatusCompleted {
		return nil, domain.ErrDocumentNotExtracted
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal(doc.OCRResult, &result); err != nil || len(result.Fields) == 0 {
		return nil, domain.ErrDocumentNotExtracted
	}

	return s.applyExtraction(ctx, doc, &result, input.OverwriteManual)
}

// applyExtraction maps the extracted fields, reconciles them against the case
// record, and persists writes and conflicts.
func (s *documentService) applyExtraction(ctx context.Context, doc *domain.Document, result *domain.ExtractionResult, overwrite bool) (*ApplyToCaseResult, error) {
	kind := doc.DocumentKind
	if kind == "" || kind == domain.KindUnknown {
		kind = result.DocumentKind
	}

	mapped := fieldmap.Map(result.Fields, doc.PersonRole, kind)
	if len(mapped) == 0 {
		if err := s.docRepo.SetAppliedToCase(ctx, doc.ID, true); err != nil {
			log.Printf("documentService.applyExtraction: failed to mark %s applied: %v", doc.ID, err)
		}
		return &ApplyToCaseResult{}, nil
	}

	current, err := s.recordRepo.GetRecord(ctx, doc.CaseID)
	if err != nil {
		return nil, fmt.Errorf("loading case record: %w", err)
	}

	plan := reconcile.BuildPlan(reconcile.Input{
		CaseID:          doc.CaseID,
		DocumentID:      doc.ID,
		Current:         current,
		Incoming:        mapped,
		Confidence:      result.Confidence,
		OverwriteManual: overwrite,
	})

	if len(plan.Writes) > 0 {
		if err := s.recordRepo.UpsertFields(ctx, doc.CaseID, plan.Writes, domain.FieldSourceOCR); err != nil {
			return nil, fmt.Errorf("writing case record fields: %w", err)
		}
	}
	if len(plan.Conflicts) > 0 {
		if err := s.conflictRepo.CreateBatch(ctx, plan.Conflicts); err != nil {
			return nil, fmt.Errorf("recording field conflicts: %w", err)
		}
	}

	if err := s.docRepo.SetAppliedToCase(ctx, doc.ID, true); err != nil {
		log.Printf("documentService.applyExtraction: failed to mark %s applied: %v", doc.ID, err)
	}

	return &ApplyToCaseResult{
		AppliedFields: len(plan.Writes),
		Conflicts:     len(plan.Conflicts),
		Unchanged:     plan.Unchanged,
	}, nil
}

// handleOCRError classifies the failure. Transient errors under the attempt
// ceiling requeue the document; everything else is terminal.
func (s *documentService) handleOCRError(ctx context.Context, doc *domain.Document, detail domain.RunDetail, ocrErr error, maxAttempts int) domain.RunDetail {
	detail.Error = ocrErr.Error()

	if ocr.Classify(ocrErr) == ocr.ClassTransient && doc.OCRAttempts < maxAttempts {
		doc.OCRStatus = domain.OCRStatusQueued
		doc.OCRError = ocrErr.Error()
		if err := s.docRepo.UpdateOCRResult(ctx, doc); err != nil {
			log.Printf("documentService.handleOCRError: failed to requeue document %s: %v", doc.ID, err)
		} else {
			log.Printf("documentService.handleOCRError: document %s requeued (attempt %d/%d): %v",
				doc.ID, doc.OCRAttempts, maxAttempts, ocrErr)
		}
		detail.Outcome = "requeued"
		detail.RetryScheduled = true
		return detail
	}

	log.Printf("documentService.handleOCRError: document %s failed terminally after %d attempts: %v",
		doc.ID, doc.OCRAttempts, ocrErr)

	doc.OCRStatus = domain.OCRStatusFailed
	doc.OCRError = ocrErr.Error()
	if err := s.docRepo.UpdateOCRResult(ctx, doc); err != nil {
		log.Printf("documentService.handleOCRError: failed to update status for %s: %v", doc.ID, err)
	}

	s.notifyFailure(ctx, doc, ocrErr)

	detail.Outcome = "failed"
	return detail
}

func (s *documentService) notifyFailure(ctx context.Context, doc *domain.Document, ocrErr error) {
	if s.notifier == nil {
		return
	}
	subject := fmt.Sprintf("OCR failed: %s", doc.Name)
	body := fmt.Sprintf(
		"Document %s (%s) in case %s failed extraction after %d attempt(s).\n\nError: %v\nStorage path: %s\n",
		doc.Name, doc.ID, doc.CaseID, doc.OCRAttempts, ocrErr, doc.StoragePath)
	if err := s.notifier.Send(ctx, subject, body); err != nil {
		log.Printf("documentService.notifyFailure: failed to send notification for %s: %v", doc.ID, err)
	}
}

func kindOrUnknown(kind domain.DocumentKind) domain.DocumentKind {
	if kind == "" {
		return domain.KindUnknown
	}
	return kind
}

func roleOrApplicant(role domain.PersonRole) domain.PersonRole {
	if role == "" {
		return domain.RoleApplicant
	}
	return role
}
