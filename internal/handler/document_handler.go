package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"casedesk/internal/domain"
	"casedesk/internal/service"
)

// DocumentHandler handles document intake and OCR endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Register handles POST /api/v1/documents
// @Summary Register a document
// @Description Register a file that already exists in the case's storage folder
// @Tags documents
// @Accept json
// @Produce json
// @Param request body object true "Document details"
// @Success 201 {object} APIResponse{data=domain.Document} "Document registered"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Register(c *gin.Context) {
	var req struct {
		CaseID       uuid.UUID           `json:"case_id" binding:"required"`
		Name         string              `json:"name"`
		StoragePath  string              `json:"storage_path" binding:"required"`
		DocumentKind domain.DocumentKind `json:"document_kind"`
		PersonRole   domain.PersonRole   `json:"person_role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "case_id and storage_path are required")
		return
	}
	if req.DocumentKind != "" && !domain.ValidDocumentKinds[req.DocumentKind] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown document_kind")
		return
	}
	if req.PersonRole != "" && !domain.ValidPersonRoles[req.PersonRole] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown person_role")
		return
	}

	doc, err := h.documentService.Register(c.Request.Context(), &service.RegisterDocumentInput{
		CaseID:       req.CaseID,
		Name:         req.Name,
		StoragePath:  req.StoragePath,
		DocumentKind: req.DocumentKind,
		PersonRole:   req.PersonRole,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// Upload handles POST /api/v1/cases/:id/documents
// @Summary Upload a document
// @Description Upload a file into the case's storage folder and register it
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Param file formData file true "Document file (pdf, jpg, png)"
// @Param document_kind formData string false "Declared document kind"
// @Param person_role formData string false "Person role the document belongs to"
// @Success 201 {object} APIResponse{data=domain.Document} "Document uploaded"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 413 {object} APIResponse "File too large"
// @Security BearerAuth
// @Router /cases/{id}/documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}

	kind := domain.DocumentKind(c.PostForm("document_kind"))
	if kind != "" && !domain.ValidDocumentKinds[kind] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown document_kind")
		return
	}
	role := domain.PersonRole(c.PostForm("person_role"))
	if role != "" && !domain.ValidPersonRoles[role] {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "unknown person_role")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read uploaded file")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), &service.UploadDocumentInput{
		CaseID:       caseID,
		FileName:     fileHeader.Filename,
		Content:      file,
		Size:         fileHeader.Size,
		DocumentKind: kind,
		PersonRole:   role,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Document} "Document details"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// ListByCase handles GET /api/v1/cases/:id/documents
// @Summary List case documents
// @Tags documents
// @Produce json
// @Param id path string true "Case ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Document,meta=PagMeta} "List of documents"
// @Failure 404 {object} APIResponse "Case not found"
// @Security BearerAuth
// @Router /cases/{id}/documents [get]
func (h *DocumentHandler) ListByCase(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.ListByCase(c.Request.Context(), caseID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Enqueue handles POST /api/v1/documents/:id/ocr
// @Summary Queue a document for extraction
// @Description Move the document to the OCR queue; a no-op if already queued or processing
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Document} "Document queued"
// @Failure 400 {object} APIResponse "Document has no storage path"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/ocr [post]
func (h *DocumentHandler) Enqueue(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.Enqueue(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// ApplyToCase handles POST /api/v1/documents/:id/apply
// @Summary Apply extraction to case record
// @Description Reconcile the document's completed extraction into the case record
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body object false "Apply options"
// @Success 200 {object} APIResponse{data=service.ApplyToCaseResult} "Reconciliation summary"
// @Failure 400 {object} APIResponse "Document not extracted"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/apply [post]
func (h *DocumentHandler) ApplyToCase(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		OverwriteManual bool `json:"overwrite_manual"`
	}
	// Body is optional; defaults preserve manual values.
	_ = c.ShouldBindJSON(&req)

	result, err := h.documentService.ApplyToCase(c.Request.Context(), &service.ApplyToCaseInput{
		DocumentID:      docID,
		OverwriteManual: req.OverwriteManual,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse "Document deleted"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": docID})
}
