// internal/services/license_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/r2certify/r2v3-backend/internal/models"
)

// Activation failure modes are distinct because they route differently:
// an unconfirmed payment sends the user back to checkout, a confirmed
// payment with a failed activation goes to support.
var (
	ErrPaymentNotConfirmed   = errors.New("payment not confirmed")
	ErrActivationFailed      = errors.New("license activation failed")
	ErrUnknownPlan           = errors.New("unknown license plan")
	ErrSessionTenantMismatch = errors.New("checkout session belongs to another tenant")
)

var planCatalog = []models.LicensePlan{
	{
		ID:            "plan_starter",
		Name:          "Starter",
		Tier:          models.LicenseTierStarter,
		Amount:        499,
		Currency:      "usd",
		MaxFacilities: 1,
		MaxSeats:      3,
		MaxClients:    0,
		SupportTier:   models.SupportTierStandard,
	},
	{
		ID:            "plan_professional",
		Name:          "Professional",
		Tier:          models.LicenseTierProfessional,
		Amount:        1499,
		Currency:      "usd",
		MaxFacilities: 5,
		MaxSeats:      15,
		MaxClients:    10,
		SupportTier:   models.SupportTierPriority,
	},
	{
		ID:            "plan_enterprise",
		Name:          "Enterprise",
		Tier:          models.LicenseTierEnterprise,
		Amount:        4999,
		Currency:      "usd",
		MaxFacilities: 25,
		MaxSeats:      100,
		MaxClients:    100,
		SupportTier:   models.SupportTierDedicated,
	},
}

// PlanCatalog returns the purchasable plans.
func PlanCatalog() []models.LicensePlan {
	out := make([]models.LicensePlan, len(planCatalog))
	copy(out, planCatalog)
	return out
}

func FindPlan(planID string) (*models.LicensePlan, error) {
	for i := range planCatalog {
		if planCatalog[i].ID == planID {
			plan := planCatalog[i]
			return &plan, nil
		}
	}
	return nil, ErrUnknownPlan
}

type LicenseService struct {
	repo     LicenseRepository
	verifier SessionVerifier
}

// ActivationResult reports the outcome of an activation attempt. Repeated
// activations of the same session are successful no-ops; AlreadyActivated
// distinguishes them for the caller.
type ActivationResult struct {
	License          *models.License `json:"license"`
	AlreadyActivated bool            `json:"already_activated"`
	NextRoute        string          `json:"next_route"`
}

func NewLicenseService(repo LicenseRepository, verifier SessionVerifier) *LicenseService {
	return &LicenseService{
		repo:     repo,
		verifier: verifier,
	}
}

// ActivateBySession turns a paid checkout session into an active license.
// The operation is idempotent on the session id: refreshing the activation
// page or replaying the redirect never creates a second license.
func (s *LicenseService) ActivateBySession(tenantID uuid.UUID, sessionID string) (*ActivationResult, error) {
	if sessionID == "" {
		return nil, ErrPaymentNotConfirmed
	}

	// Fast path: this session was already activated. A session id replayed
	// by a tenant other than the one it was activated for is treated as
	// unknown.
	if existing, err := s.repo.FindBySessionID(sessionID); err == nil {
		if existing.TenantID != tenantID {
			return nil, ErrSessionTenantMismatch
		}
		return &ActivationResult{
			License:          existing,
			AlreadyActivated: true,
			NextRoute:        "/intake",
		}, nil
	} else if !errors.Is(err, ErrLicenseNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}

	verification, err := s.verifier.VerifySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, err)
	}
	if !verification.Paid {
		return nil, ErrPaymentNotConfirmed
	}

	plan, err := FindPlan(verification.PlanID)
	if err != nil {
		// Paid session referencing no known plan is an activation fault,
		// not a payment fault.
		return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}

	now := time.Now()
	expires := now.AddDate(1, 0, 0)
	license := &models.License{
		TenantID:        tenantID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		Tier:            plan.Tier,
		Status:          models.LicenseStatusActive,
		MaxFacilities:   plan.MaxFacilities,
		MaxSeats:        plan.MaxSeats,
		MaxClients:      plan.MaxClients,
		SupportTier:     plan.SupportTier,
		AmountPaid:      verification.Amount,
		Currency:        verification.Currency,
		StripeSessionID: &sessionID,
		ActivatedAt:     &now,
		ExpiresAt:       &expires,
	}

	if err := s.repo.Create(license); err != nil {
		// A concurrent activation of the same session loses the insert race
		// on the unique session index; the winner's license is the answer,
		// provided it belongs to the same tenant.
		if existing, findErr := s.repo.FindBySessionID(sessionID); findErr == nil {
			if existing.TenantID != tenantID {
				return nil, ErrSessionTenantMismatch
			}
			return &ActivationResult{
				License:          existing,
				AlreadyActivated: true,
				NextRoute:        "/intake",
			}, nil
		}
		logrus.WithError(err).WithField("session_id", sessionID).Error("License creation failed")
		return nil, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}

	return &ActivationResult{
		License:   license,
		NextRoute: "/intake",
	}, nil
}

// AutoProvision creates a starter license without a checkout session. The
// onboarding completion flow falls back to this when payment confirmation
// does not land within its poll window.
func (s *LicenseService) AutoProvision(tenantID uuid.UUID) (*models.License, error) {
	if existing, err := s.repo.FindActiveByTenant(tenantID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrLicenseNotFound) {
		return nil, err
	}

	plan := planCatalog[0]
	now := time.Now()
	expires := now.AddDate(1, 0, 0)
	license := &models.License{
		TenantID:        tenantID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		Tier:            plan.Tier,
		Status:          models.LicenseStatusActive,
		MaxFacilities:   plan.MaxFacilities,
		MaxSeats:        plan.MaxSeats,
		MaxClients:      plan.MaxClients,
		SupportTier:     plan.SupportTier,
		AutoProvisioned: true,
		ActivatedAt:     &now,
		ExpiresAt:       &expires,
	}

	if err := s.repo.Create(license); err != nil {
		return nil, fmt.Errorf("failed to auto-provision license: %w", err)
	}

	logrus.WithField("tenant_id", tenantID).Info("License auto-provisioned")
	return license, nil
}

// Status returns the tenant's current active license, or ErrLicenseNotFound.
func (s *LicenseService) Status(tenantID uuid.UUID) (*models.License, error) {
	license, err := s.repo.FindActiveByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if !license.Active() {
		return nil, ErrLicenseNotFound
	}
	return license, nil
}

// List returns all of the tenant's licenses, newest first.
func (s *LicenseService) List(tenantID uuid.UUID) ([]models.License, error) {
	return s.repo.ListByTenant(tenantID)
}
