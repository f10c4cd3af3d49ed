// internal/handlers/export.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/r2certify/r2v3-backend/internal/i18n"
	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// POST /assessments/:assessmentId/exports/:format
func (h *ExportHandler) Generate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}

	format := models.ExportFormat(c.Param("format"))
	if !format.Valid() {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "format"), nil)
		return
	}

	var req services.ExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	result, err := h.exportService.Generate(tenantID, assessmentID, format, &req)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
			return
		}
		utils.ErrorResponse(c, 500, "EXPORT_FAILED", i18n.T(lang, i18n.KeyExportFailed), err.Error())
		return
	}

	message := i18n.T(lang, i18n.KeyExportReady)
	if result.EmailedTo != "" {
		message = i18n.T(lang, i18n.KeyExportEmailed)
	}

	utils.CreatedResponse(c, gin.H{
		"message": message,
		"export":  result,
	})
}

// GET /assessments/:assessmentId/exports
func (h *ExportHandler) History(c *gin.Context) {
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}

	records, err := h.exportService.History(tenantID, assessmentID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"exports": records})
}
