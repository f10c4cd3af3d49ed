// internal/handlers/license.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/r2certify/r2v3-backend/internal/i18n"
	"github.com/r2certify/r2v3-backend/internal/services"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
	paymentService *services.PaymentService
}

func NewLicenseHandler(licenseService *services.LicenseService, paymentService *services.PaymentService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
		paymentService: paymentService,
	}
}

// GET /licenses/plans
func (h *LicenseHandler) GetPlans(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"plans": services.PlanCatalog(),
	})
}

// GET /licenses
func (h *LicenseHandler) List(c *gin.Context) {
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	licenses, err := h.licenseService.List(tenantID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"licenses": licenses})
}

// POST /stripe/checkout-session
func (h *LicenseHandler) CreateCheckoutSession(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req services.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	session, err := h.paymentService.CreateCheckout(tenantID, &req)
	if err != nil {
		if errors.Is(err, services.ErrUnknownPlan) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPaymentSessionCreated),
		"session": session,
	})
}

// GET /stripe/sessions/:sessionId
func (h *LicenseHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		utils.BadRequestResponse(c, "Missing session id", nil)
		return
	}

	verification, err := h.paymentService.VerifySession(sessionID)
	if err != nil {
		utils.NotFoundResponse(c, "session")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"session_id": sessionID,
		"paid":       verification.Paid,
		"plan_id":    verification.PlanID,
	})
}

// POST /stripe/mock/complete
// Demo flows have no Stripe webhook; this endpoint stands in for it.
func (h *LicenseHandler) CompleteMockSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.paymentService.CompleteMockSession(req.SessionID); err != nil {
		utils.NotFoundResponse(c, "session")
		return
	}

	utils.SuccessResponse(c, gin.H{"session_id": req.SessionID, "paid": true})
}

// POST /licenses/activate
func (h *LicenseHandler) Activate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req struct {
		SessionID string `json:"session_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.licenseService.ActivateBySession(tenantID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionTenantMismatch):
			utils.NotFoundResponse(c, "session")
		case errors.Is(err, services.ErrPaymentNotConfirmed):
			utils.ErrorResponse(c, 402, "PAYMENT_NOT_CONFIRMED",
				i18n.T(lang, i18n.KeyPaymentNotConfirmed), nil)
		case errors.Is(err, services.ErrActivationFailed):
			utils.ErrorResponse(c, 500, "ACTIVATION_FAILED",
				i18n.T(lang, i18n.KeyPaymentActivationError), nil)
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	message := i18n.T(lang, i18n.KeyLicenseActivated)
	if result.AlreadyActivated {
		message = i18n.T(lang, i18n.KeyLicenseAlreadyActivated)
	}

	utils.SuccessResponse(c, gin.H{
		"message":           message,
		"license":           result.License,
		"already_activated": result.AlreadyActivated,
		"next_route":        result.NextRoute,
	})
}

// GET /licenses/status
func (h *LicenseHandler) GetStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	tenantID, _, ok := tenantFromContext(c)
	if !ok {
		return
	}

	license, err := h.licenseService.Status(tenantID)
	if err != nil {
		if errors.Is(err, services.ErrLicenseNotFound) {
			utils.SuccessResponse(c, gin.H{
				"active":  false,
				"message": i18n.T(lang, i18n.KeyLicenseNoneActive),
			})
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"active":  true,
		"license": license,
	})
}
