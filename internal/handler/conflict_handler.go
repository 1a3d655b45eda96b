package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"casedesk/internal/domain"
	"casedesk/internal/service"
)

// ConflictHandler handles field-conflict resolution endpoints.
type ConflictHandler struct {
	caseService service.CaseService
}

// NewConflictHandler creates a new ConflictHandler.
func NewConflictHandler(caseService service.CaseService) *ConflictHandler {
	return &ConflictHandler{caseService: caseService}
}

// Resolve handles POST /api/v1/conflicts/resolve
// @Summary Resolve field conflicts
// @Description Resolve a batch of pending conflicts; choosing the extracted value writes it into the case record
// @Tags conflicts
// @Accept json
// @Produce json
// @Param request body object true "Conflict IDs and resolution"
// @Success 200 {object} APIResponse{data=service.ResolveConflictsResult} "Resolution summary"
// @Failure 400 {object} APIResponse "Invalid resolution"
// @Failure 404 {object} APIResponse "Conflicts not found"
// @Security BearerAuth
// @Router /conflicts/resolve [post]
func (h *ConflictHandler) Resolve(c *gin.Context) {
	var req struct {
		ConflictIDs []uuid.UUID           `json:"conflict_ids" binding:"required"`
		Resolution  domain.ConflictStatus `json:"resolution" binding:"required"`
		Notes       string                `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "conflict_ids and resolution are required")
		return
	}

	result, err := h.caseService.ResolveConflicts(c.Request.Context(), &service.ResolveConflictsInput{
		ConflictIDs: req.ConflictIDs,
		Resolution:  req.Resolution,
		Notes:       req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
