// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Onboarding
	KeyOnboardingStepSaved     = "onboarding.step_saved"
	KeyOnboardingComplete      = "onboarding.complete"
	KeyOnboardingStepInvalid   = "onboarding.step_invalid"
	KeyOnboardingNotApplicable = "onboarding.not_applicable"

	// Licenses
	KeyLicenseActivated        = "license.activated"
	KeyLicenseAlreadyActivated = "license.already_activated"
	KeyLicenseNotFound         = "license.not_found"
	KeyLicenseNoneActive       = "license.none_active"
	KeyLicenseProvisioned      = "license.provisioned"

	// Payments
	KeyPaymentNotConfirmed    = "payment.not_confirmed"
	KeyPaymentActivationError = "payment.activation_failed"
	KeyPaymentSessionCreated  = "payment.session_created"

	// Intake
	KeyIntakeCreated       = "intake.created"
	KeyIntakeUpdated       = "intake.updated"
	KeyIntakeSubmitted     = "intake.submitted"
	KeyIntakeNotFound      = "intake.not_found"
	KeyIntakeIncomplete    = "intake.incomplete"
	KeyIntakeAlreadyFinal  = "intake.already_submitted"
	KeyIntakeFacilitySaved = "intake.facility_saved"
	KeyIntakeFacilityGone  = "intake.facility_not_found"

	// Assessments
	KeyAssessmentNotFound   = "assessment.not_found"
	KeyAssessmentAnswered   = "assessment.answer_recorded"
	KeyAssessmentOutOfScope = "assessment.question_out_of_scope"

	// Exports
	KeyExportReady   = "export.ready"
	KeyExportEmailed = "export.emailed"
	KeyExportFailed  = "export.failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
