// internal/handlers/onboarding.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/r2certify/r2v3-backend/internal/i18n"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type OnboardingHandler struct {
	onboardingService *services.OnboardingService
}

func NewOnboardingHandler(onboardingService *services.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
	}
}

// GET /onboarding/status
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	tenantID, tenantType, ok := tenantFromContext(c)
	if !ok {
		return
	}

	status, err := h.onboardingService.Status(tenantID, tenantType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, status)
}

// PUT /onboarding/organization
func (h *OnboardingHandler) SaveOrganization(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req services.OrganizationStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	profile, err := h.onboardingService.SaveOrganization(tenantID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOnboardingStepSaved),
		"profile": profile,
	})
}

// PUT /onboarding/facility
func (h *OnboardingHandler) SaveFacility(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, tenantType, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req services.FacilityStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	facility, err := h.onboardingService.SaveFacility(tenantID, tenantType, &req)
	if err != nil {
		if errors.Is(err, services.ErrStepNotApplicable) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOnboardingStepInvalid))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyOnboardingStepSaved),
		"facility": facility,
	})
}

// POST /onboarding/clients
func (h *OnboardingHandler) SaveClientOrganization(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, tenantType, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req services.ClientOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	client, err := h.onboardingService.SaveClientOrganization(tenantID, tenantType, &req)
	if err != nil {
		if errors.Is(err, services.ErrStepNotApplicable) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOnboardingStepInvalid))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOnboardingStepSaved),
		"client":  client,
	})
}

// POST /onboarding/client-facilities
func (h *OnboardingHandler) SaveClientFacility(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, tenantType, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req services.ClientFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	facility, err := h.onboardingService.SaveClientFacility(tenantID, tenantType, &req)
	if err != nil {
		if errors.Is(err, services.ErrStepNotApplicable) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOnboardingStepInvalid))
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyOnboardingStepSaved),
		"facility": facility,
	})
}

// POST /onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, tenantType, ok := tenantFromContext(c)
	if !ok {
		return
	}

	result, err := h.onboardingService.Complete(c.Request.Context(), tenantID, tenantType)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":          i18n.T(lang, i18n.KeyOnboardingComplete),
		"license":          result.License,
		"auto_provisioned": result.AutoProvisioned,
		"next_route":       result.NextRoute,
	})
}
