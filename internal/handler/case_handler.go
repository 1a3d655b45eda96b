package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"casedesk/internal/domain"
	"casedesk/internal/service"
)

// CaseHandler handles case and case-record endpoints.
type CaseHandler struct {
	caseService service.CaseService
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// Create handles POST /api/v1/cases
// @Summary Open a case
// @Description Open a new client case with an optional storage folder name
// @Tags cases
// @Accept json
// @Produce json
// @Param request body object true "Case details"
// @Success 201 {object} APIResponse{data=domain.Case} "Case created"
// @Failure 400 {object} APIResponse "Invalid request"
// @Security BearerAuth
// @Router /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	var req struct {
		ClientName string `json:"client_name" binding:"required"`
		FolderName string `json:"folder_name"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "client_name is required")
		return
	}

	created, err := h.caseService.Create(c.Request.Context(), &service.CreateCaseInput{
		ClientName: req.ClientName,
		FolderName: req.FolderName,
		Notes:      req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, created)
}

// GetByID handles GET /api/v1/cases/:id
// @Summary Get case by ID
// @Tags cases
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Case} "Case details"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id} [get]
func (h *CaseHandler) GetByID(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	found, err := h.caseService.GetByID(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, found)
}

// List handles GET /api/v1/cases
// @Summary List cases
// @Tags cases
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Case,meta=PagMeta} "List of cases"
// @Security BearerAuth
// @Router /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	cases, total, err := h.caseService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, cases, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetRecord handles GET /api/v1/cases/:id/record
// @Summary Get the case record
// @Description Get the flat field map assembled from manual entry and applied extractions
// @Tags cases
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Success 200 {object} APIResponse{data=map[string]string} "Case record fields"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id}/record [get]
func (h *CaseHandler) GetRecord(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	record, err := h.caseService.GetRecord(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, record)
}

// UpdateRecord handles PATCH /api/v1/cases/:id/record
// @Summary Update case record fields
// @Description Apply manual field edits to the case record
// @Tags cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Param request body map[string]string true "Field name to value map"
// @Success 200 {object} APIResponse "Fields updated"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id}/record [patch]
func (h *CaseHandler) UpdateRecord(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "request body must be a field map")
		return
	}

	if err := h.caseService.UpdateRecord(c.Request.Context(), caseID, fields); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"updated": len(fields)})
}

// ListConflicts handles GET /api/v1/cases/:id/conflicts
// @Summary List field conflicts
// @Description List field conflicts for a case, optionally filtered by status
// @Tags conflicts
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Param status query string false "Filter by status (pending, resolved_use_ocr, resolved_keep_manual, ignored)"
// @Success 200 {object} APIResponse{data=[]domain.FieldConflict} "Field conflicts"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id}/conflicts [get]
func (h *CaseHandler) ListConflicts(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	status := domain.ConflictStatus(c.Query("status"))

	conflicts, err := h.caseService.ListConflicts(c.Request.Context(), caseID, status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, conflicts)
}

// Export handles GET /api/v1/cases/:id/export
// @Summary Export case workbook
// @Description Download the case record and pending conflicts as an Excel workbook
// @Tags cases
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Case ID (UUID)"
// @Success 200 {file} binary "Workbook"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id}/export [get]
func (h *CaseHandler) Export(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	data, filename, err := h.caseService.ExportWorkbook(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
