// internal/handlers/assessment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/r2certify/r2v3-backend/internal/i18n"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type AssessmentHandler struct {
	assessmentService *services.AssessmentService
	storageService    *services.StorageService
}

func NewAssessmentHandler(assessmentService *services.AssessmentService, storageService *services.StorageService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		storageService:    storageService,
	}
}

// GET /assessments/current
func (h *AssessmentHandler) GetCurrent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.GetCurrent(tenantID)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"assessment": assessment})
}

// GET /assessments/:assessmentId
func (h *AssessmentHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Get(tenantID, assessmentID)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"assessment": assessment})
}

// GET /assessments/:assessmentId/questions
func (h *AssessmentHandler) Questions(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}

	list, err := h.assessmentService.Questions(tenantID, assessmentID)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, list)
}

// POST /assessments/:assessmentId/questions/:questionId/answer
func (h *AssessmentHandler) Answer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}
	questionID, ok := pathUUID(c, "questionId")
	if !ok {
		return
	}

	var req services.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	answer, err := h.assessmentService.Answer(tenantID, assessmentID, questionID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAssessmentNotFound):
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
		case errors.Is(err, services.ErrQuestionNotInScope):
			utils.ErrorResponse(c, 400, "QUESTION_NOT_IN_SCOPE",
				i18n.T(lang, i18n.KeyAssessmentOutOfScope), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAssessmentAnswered),
		"answer":  answer,
	})
}

// GET /assessments/:assessmentId/coverage
func (h *AssessmentHandler) Coverage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	assessmentID, ok := pathUUID(c, "assessmentId")
	if !ok {
		return
	}

	report, err := h.assessmentService.Coverage(tenantID, assessmentID)
	if err != nil {
		if errors.Is(err, services.ErrAssessmentNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyAssessmentNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, report)
}

// POST /assessments/evidence
func (h *AssessmentHandler) UploadEvidence(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadEvidence(file, header, tenantID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"file": result})
}
