// internal/services/onboarding_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r2certify/r2v3-backend/internal/models"
)

func TestStepSequenceByTenantType(t *testing.T) {
	assert.Equal(t, []models.OnboardingStep{
		models.OnboardingStepOrganization,
		models.OnboardingStepFacility,
	}, StepSequence(models.TenantTypeBusiness))

	assert.Equal(t, []models.OnboardingStep{
		models.OnboardingStepOrganization,
		models.OnboardingStepClientOrganization,
		models.OnboardingStepClientFacility,
	}, StepSequence(models.TenantTypeConsultant))
}

func TestCompletedRouteByTenantType(t *testing.T) {
	assert.Equal(t, "/intake", completedRoute(models.TenantTypeBusiness))
	assert.Equal(t, "/dashboard", completedRoute(models.TenantTypeConsultant))
}

func TestIsDemoEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"buyer@r2test.example.com", true},
		{"Buyer@R2TEST.example.COM", true},
		{"pat+r2demo@acme.example", true},
		{"pat+r2demo@anything.io", true},
		{"pat@acme.example", false},
		{"r2demo@acme.example", false},
		{"pat+other@acme.example", false},
		{"pat@r2test.example.com.evil.io", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDemoEmail(tt.email), tt.email)
	}
}
