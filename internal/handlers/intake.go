// internal/handlers/intake.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/r2certify/r2v3-backend/internal/i18n"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type IntakeHandler struct {
	intakeService *services.IntakeService
}

func NewIntakeHandler(intakeService *services.IntakeService) *IntakeHandler {
	return &IntakeHandler{
		intakeService: intakeService,
	}
}

// GET /intake-forms/current
func (h *IntakeHandler) GetCurrent(c *gin.Context) {
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	form, err := h.intakeService.GetOrCreate(tenantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"form": form})
}

// GET /intake-forms/:formId
func (h *IntakeHandler) Get(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	form, err := h.intakeService.Get(tenantID, formID)
	if err != nil {
		if errors.Is(err, services.ErrIntakeNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"form": form})
}

// PATCH /intake-forms/:formId
func (h *IntakeHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	var req services.IntakeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	form, err := h.intakeService.Update(tenantID, formID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIntakeNotFound):
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
		case errors.Is(err, services.ErrIntakeAlreadySubmitted):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyIntakeAlreadyFinal))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyIntakeUpdated),
		"form":    form,
	})
}

// POST /intake-forms/:formId/appendices
func (h *IntakeHandler) ToggleAppendix(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	var req services.ToggleAppendixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	form, err := h.intakeService.ToggleAppendix(tenantID, formID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIntakeNotFound):
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
		case errors.Is(err, services.ErrIntakeAlreadySubmitted):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyIntakeAlreadyFinal))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyIntakeUpdated),
		"form":    form,
	})
}

// GET /intake-forms/:formId/validate
func (h *IntakeHandler) Validate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	form, err := h.intakeService.Get(tenantID, formID)
	if err != nil {
		if errors.Is(err, services.ErrIntakeNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	issues := h.intakeService.ValidateForSubmit(form)
	utils.SuccessResponse(c, gin.H{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

// POST /intake-forms/:formId/submit
func (h *IntakeHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	assessment, err := h.intakeService.Submit(tenantID, formID, userID)
	if err != nil {
		var validationErr *services.IntakeValidationError
		switch {
		case errors.As(err, &validationErr):
			utils.ErrorResponse(c, 422, "INTAKE_INCOMPLETE",
				i18n.T(lang, i18n.KeyIntakeIncomplete), validationErr.Issues)
		case errors.Is(err, services.ErrIntakeNotFound):
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
		case errors.Is(err, services.ErrIntakeAlreadySubmitted):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyIntakeAlreadyFinal))
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyIntakeSubmitted),
		"assessment": assessment,
	})
}

// GET /intake-forms/:formId/facilities
func (h *IntakeHandler) ListFacilities(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	facilities, err := h.intakeService.ListFacilities(tenantID, formID)
	if err != nil {
		if errors.Is(err, services.ErrIntakeNotFound) {
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"facilities": facilities})
}

// POST /intake-forms/:formId/facilities
func (h *IntakeHandler) AddFacility(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	formID, ok := pathUUID(c, "formId")
	if !ok {
		return
	}

	var req services.IntakeFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	facility, err := h.intakeService.AddFacility(tenantID, formID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIntakeNotFound):
			utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeNotFound))
		case errors.Is(err, services.ErrIntakeAlreadySubmitted):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyIntakeAlreadyFinal))
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyIntakeFacilitySaved),
		"facility": facility,
	})
}

// PUT /intake-facilities/:facilityId
func (h *IntakeHandler) UpdateFacility(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	facilityID, ok := pathUUID(c, "facilityId")
	if !ok {
		return
	}

	var req services.IntakeFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	facility, err := h.intakeService.UpdateFacility(tenantID, facilityID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyIntakeFacilitySaved),
		"facility": facility,
	})
}

// DELETE /intake-facilities/:facilityId
func (h *IntakeHandler) DeleteFacility(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}
	facilityID, ok := pathUUID(c, "facilityId")
	if !ok {
		return
	}

	if err := h.intakeService.DeleteFacility(tenantID, facilityID); err != nil {
		utils.NotFoundResponse(c, i18n.T(lang, i18n.KeyIntakeFacilityGone))
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
