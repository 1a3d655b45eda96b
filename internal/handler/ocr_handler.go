package handler

import (
	"github.com/gin-gonic/gin"

	"casedesk/internal/service"
)

// OCRHandler exposes manual queue operations.
type OCRHandler struct {
	worker *service.OCRQueueWorker
}

// NewOCRHandler creates a new OCRHandler.
func NewOCRHandler(worker *service.OCRQueueWorker) *OCRHandler {
	return &OCRHandler{worker: worker}
}

// Run handles POST /api/v1/ocr/run
// @Summary Run one OCR batch
// @Description Claim and process one batch of queued documents, returning a per-document report
// @Tags ocr
// @Produce json
// @Success 200 {object} APIResponse{data=domain.RunReport} "Batch report"
// @Security BearerAuth
// @Router /ocr/run [post]
func (h *OCRHandler) Run(c *gin.Context) {
	report, err := h.worker.RunOnce(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}
