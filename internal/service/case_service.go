package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"casedesk/internal/domain"
	"casedesk/internal/export"
	"casedesk/internal/port"
)

// CreateCaseInput is the DTO for opening a new client case.
type CreateCaseInput struct {
	ClientName string
	FolderName string
	Notes      string
}

// ResolveConflictsInput is the DTO for resolving a batch of field conflicts.
type ResolveConflictsInput struct {
	ConflictIDs []uuid.UUID
	Resolution  domain.ConflictStatus
	Notes       string
}

// ResolveConflictsResult summarizes one resolution batch.
type ResolveConflictsResult struct {
	Resolved      int `json:"resolved"`
	FieldsUpdated int `json:"fields_updated"`
}

// CaseService defines the case, case-record, and conflict management contract.
type CaseService interface {
	Create(ctx context.Context, input *CreateCaseInput) (*domain.Case, error)
	GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error)
	List(ctx context.Context, offset, limit int) ([]domain.Case, int, error)

	GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error)
	UpdateRecord(ctx context.Context, caseID uuid.UUID, fields map[string]string) error

	ListConflicts(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error)
	ResolveConflicts(ctx context.Context, input *ResolveConflictsInput) (*ResolveConflictsResult, error)

	ExportWorkbook(ctx context.Context, caseID uuid.UUID) ([]byte, string, error)
}

type caseService struct {
	caseRepo     port.CaseRepository
	recordRepo   port.CaseRecordRepository
	conflictRepo port.ConflictRepository
}

// NewCaseService creates a new CaseService implementation.
func NewCaseService(caseRepo port.CaseRepository, recordRepo port.CaseRecordRepository, conflictRepo port.ConflictRepository) CaseService {
	return &caseService{
		caseRepo:     caseRepo,
		recordRepo:   recordRepo,
		conflictRepo: conflictRepo,
	}
}

func (s *caseService) Create(ctx context.Context, input *CreateCaseInput) (*domain.Case, error) {
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		return nil, fmt.Errorf("client name is required")
	}

	folderName := strings.TrimSpace(input.FolderName)
	if folderName == "" {
		folderName = clientName
	}

	c := &domain.Case{
		ID:         uuid.New(),
		ClientName: clientName,
		FolderName: folderName,
		Notes:      input.Notes,
	}

	if err := s.caseRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating case: %w", err)
	}

	log.Printf("caseService.Create: opened case %s for %s (folder %s)", c.ID, c.ClientName, c.FolderName)
	return c, nil
}

func (s *caseService) GetByID(ctx context.Context, caseID uuid.UUID) (*domain.Case, error) {
	return s.caseRepo.GetByID(ctx, caseID)
}

func (s *caseService) List(ctx context.Context, offset, limit int) ([]domain.Case, int, error) {
	return s.caseRepo.List(ctx, offset, limit)
}

func (s *caseService) GetRecord(ctx context.Context, caseID uuid.UUID) (map[string]string, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.recordRepo.GetRecord(ctx, caseID)
}

// UpdateRecord applies manual field edits. Empty values are written as-is so
// staff can blank out a wrong entry.
func (s *caseService) UpdateRecord(ctx context.Context, caseID uuid.UUID, fields map[string]string) error {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	cleaned := make(map[string]string, len(fields))
	for name, value := range fields {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		cleaned[name] = strings.TrimSpace(value)
	}

	if err := s.recordRepo.UpsertFields(ctx, caseID, cleaned, domain.FieldSourceManual); err != nil {
		return fmt.Errorf("updating case record: %w", err)
	}
	return nil
}

func (s *caseService) ListConflicts(ctx context.Context, caseID uuid.UUID, status domain.ConflictStatus) ([]domain.FieldConflict, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.conflictRepo.ListByCase(ctx, caseID, status)
}

// ResolveConflicts moves a batch of pending conflicts to a terminal status.
// Choosing the extracted value also writes it into the case record.
func (s *caseService) ResolveConflicts(ctx context.Context, input *ResolveConflictsInput) (*ResolveConflictsResult, error) {
	if !domain.ValidResolutions[input.Resolution] {
		return nil, domain.ErrInvalidResolution
	}
	if len(input.ConflictIDs) == 0 {
		return &ResolveConflictsResult{}, nil
	}

	conflicts, err := s.conflictRepo.GetByIDs(ctx, input.ConflictIDs)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, domain.ErrConflictNotFound
	}

	result := &ResolveConflictsResult{}

	if input.Resolution == domain.ConflictStatusUseOCR {
		// Group record writes per case. Resolving applies the extracted value
		// for every still-pending conflict in the batch.
		writesByCase := make(map[uuid.UUID]map[string]string)
		for _, c := range conflicts {
			if c.Status != domain.ConflictStatusPending {
				continue
			}
			if writesByCase[c.CaseID] == nil {
				writesByCase[c.CaseID] = make(map[string]string)
			}
			writesByCase[c.CaseID][c.FieldName] = c.OCRValue
		}
		for caseID, writes := range writesByCase {
			if err := s.recordRepo.UpsertFields(ctx, caseID, writes, domain.FieldSourceOCR); err != nil {
				return nil, fmt.Errorf("applying resolved values to case %s: %w", caseID, err)
			}
			result.FieldsUpdated += len(writes)
		}
	}

	resolved, err := s.conflictRepo.ResolveBatch(ctx, input.ConflictIDs, input.Resolution, input.Notes)
	if err != nil {
		return nil, err
	}
	result.Resolved = resolved

	log.Printf("caseService.ResolveConflicts: resolved %d conflict(s) as %s", resolved, input.Resolution)
	return result, nil
}

func (s *caseService) ExportWorkbook(ctx context.Context, caseID uuid.UUID) ([]byte, string, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, "", err
	}
	record, err := s.recordRepo.GetRecord(ctx, caseID)
	if err != nil {
		return nil, "", err
	}
	conflicts, err := s.conflictRepo.ListByCase(ctx, caseID, domain.ConflictStatusPending)
	if err != nil {
		return nil, "", err
	}

	data, err := export.CaseWorkbook(c, record, conflicts)
	if err != nil {
		return nil, "", fmt.Errorf("building workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-case-record.xlsx", strings.ReplaceAll(strings.ToLower(c.ClientName), " ", "-"))
	return data, filename, nil
}
