// internal/services/onboarding_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/retry"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

var ErrStepNotApplicable = errors.New("onboarding step not applicable to tenant type")

type OnboardingService struct {
	db       *gorm.DB
	cfg      *config.Config
	licenses *LicenseService
}

func NewOnboardingService(db *gorm.DB, cfg *config.Config, licenses *LicenseService) *OnboardingService {
	return &OnboardingService{
		db:       db,
		cfg:      cfg,
		licenses: licenses,
	}
}

// StepSequence returns the wizard steps for a tenant type. Business tenants
// describe their own organization and facility; consultants describe their
// practice and then the client they are onboarding.
func StepSequence(tenantType models.TenantType) []models.OnboardingStep {
	if tenantType == models.TenantTypeConsultant {
		return []models.OnboardingStep{
			models.OnboardingStepOrganization,
			models.OnboardingStepClientOrganization,
			models.OnboardingStepClientFacility,
		}
	}
	return []models.OnboardingStep{
		models.OnboardingStepOrganization,
		models.OnboardingStepFacility,
	}
}

type OrganizationStepRequest struct {
	LegalCompanyName   string `json:"legal_company_name" validate:"required"`
	DBAName            string `json:"dba_name"`
	BusinessEntityType string `json:"business_entity_type"`
	YearEstablished    int    `json:"year_established"`
	Website            string `json:"website"`
	PrimaryContactName string `json:"primary_contact_name" validate:"required"`
	PrimaryContactRole string `json:"primary_contact_role"`
	Phone              string `json:"phone"`
	AddressLine1       string `json:"address_line1"`
	AddressLine2       string `json:"address_line2"`
	City               string `json:"city"`
	State              string `json:"state"`
	PostalCode         string `json:"postal_code"`
	Country            string `json:"country" validate:"required"`
}

type FacilityStepRequest struct {
	FacilityName         string   `json:"facility_name" validate:"required"`
	SquareFootage        int      `json:"square_footage"`
	EmployeeCount        int      `json:"employee_count"`
	OperatingSchedule    string   `json:"operating_schedule"`
	ProcessingActivities []string `json:"processing_activities"`
	AddressLine1         string   `json:"address_line1"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	PostalCode           string   `json:"postal_code"`
	Country              string   `json:"country" validate:"required"`
}

type ClientOrganizationRequest struct {
	LegalCompanyName    string `json:"legal_company_name" validate:"required"`
	BusinessEntityType  string `json:"business_entity_type"`
	PrimaryContactName  string `json:"primary_contact_name" validate:"required"`
	PrimaryContactEmail string `json:"primary_contact_email" validate:"omitempty,email"`
	Phone               string `json:"phone"`
	Country             string `json:"country" validate:"required"`
}

type ClientFacilityRequest struct {
	ClientOrganizationID uuid.UUID `json:"client_organization_id" validate:"required"`
	FacilityName         string    `json:"facility_name" validate:"required"`
	EmployeeCount        int       `json:"employee_count"`
	ProcessingActivities []string  `json:"processing_activities"`
	AddressLine1         string    `json:"address_line1"`
	City                 string    `json:"city"`
	Country              string    `json:"country" validate:"required"`
}

// OnboardingStatus shows per-step completion for the wizard resume screen.
type OnboardingStatus struct {
	Steps     []models.OnboardingStep        `json:"steps"`
	Completed map[models.OnboardingStep]bool `json:"completed"`
	Profile   *models.OrganizationProfile    `json:"profile,omitempty"`
	Facility  *models.FacilityBaseline       `json:"facility,omitempty"`
	Clients   []models.ClientOrganization    `json:"clients,omitempty"`
}

// CompletionResult is what the wizard's final screen renders.
type CompletionResult struct {
	License         *models.License `json:"license"`
	AutoProvisioned bool            `json:"auto_provisioned"`
	NextRoute       string          `json:"next_route"`
}

// SaveOrganization upserts the tenant's organization profile. Revisiting the
// step overwrites in place rather than duplicating.
func (s *OnboardingService) SaveOrganization(tenantID uuid.UUID, req *OrganizationStepRequest) (*models.OrganizationProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile := &models.OrganizationProfile{
		TenantID:           tenantID,
		LegalCompanyName:   req.LegalCompanyName,
		DBAName:            req.DBAName,
		BusinessEntityType: req.BusinessEntityType,
		YearEstablished:    req.YearEstablished,
		Website:            req.Website,
		PrimaryContactName: req.PrimaryContactName,
		PrimaryContactRole: req.PrimaryContactRole,
		Phone:              req.Phone,
		AddressLine1:       req.AddressLine1,
		AddressLine2:       req.AddressLine2,
		City:               req.City,
		State:              req.State,
		PostalCode:         req.PostalCode,
		Country:            req.Country,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save organization profile: %w", err)
	}
	return profile, nil
}

func (s *OnboardingService) SaveFacility(tenantID uuid.UUID, tenantType models.TenantType, req *FacilityStepRequest) (*models.FacilityBaseline, error) {
	if tenantType != models.TenantTypeBusiness {
		return nil, ErrStepNotApplicable
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	facility := &models.FacilityBaseline{
		TenantID:             tenantID,
		FacilityName:         req.FacilityName,
		SquareFootage:        req.SquareFootage,
		EmployeeCount:        req.EmployeeCount,
		OperatingSchedule:    req.OperatingSchedule,
		ProcessingActivities: pq.StringArray(req.ProcessingActivities),
		AddressLine1:         req.AddressLine1,
		City:                 req.City,
		State:                req.State,
		PostalCode:           req.PostalCode,
		Country:              req.Country,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(facility).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save facility baseline: %w", err)
	}
	return facility, nil
}

func (s *OnboardingService) SaveClientOrganization(tenantID uuid.UUID, tenantType models.TenantType, req *ClientOrganizationRequest) (*models.ClientOrganization, error) {
	if tenantType != models.TenantTypeConsultant {
		return nil, ErrStepNotApplicable
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	client := &models.ClientOrganization{
		TenantID:            tenantID,
		LegalCompanyName:    req.LegalCompanyName,
		BusinessEntityType:  req.BusinessEntityType,
		PrimaryContactName:  req.PrimaryContactName,
		PrimaryContactEmail: req.PrimaryContactEmail,
		Phone:               req.Phone,
		Country:             req.Country,
	}

	if err := s.db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to save client organization: %w", err)
	}
	return client, nil
}

func (s *OnboardingService) SaveClientFacility(tenantID uuid.UUID, tenantType models.TenantType, req *ClientFacilityRequest) (*models.ClientFacility, error) {
	if tenantType != models.TenantTypeConsultant {
		return nil, ErrStepNotApplicable
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// The client organization must belong to this tenant.
	var client models.ClientOrganization
	if err := s.db.Where("id = ? AND tenant_id = ?", req.ClientOrganizationID, tenantID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client organization not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	facility := &models.ClientFacility{
		TenantID:             tenantID,
		ClientOrganizationID: req.ClientOrganizationID,
		FacilityName:         req.FacilityName,
		EmployeeCount:        req.EmployeeCount,
		ProcessingActivities: pq.StringArray(req.ProcessingActivities),
		AddressLine1:         req.AddressLine1,
		City:                 req.City,
		Country:              req.Country,
	}

	if err := s.db.Create(facility).Error; err != nil {
		return nil, fmt.Errorf("failed to save client facility: %w", err)
	}
	return facility, nil
}

// Status reports which steps are complete so the wizard can resume.
func (s *OnboardingService) Status(tenantID uuid.UUID, tenantType models.TenantType) (*OnboardingStatus, error) {
	status := &OnboardingStatus{
		Steps:     StepSequence(tenantType),
		Completed: make(map[models.OnboardingStep]bool),
	}

	var profile models.OrganizationProfile
	if err := s.db.Where("tenant_id = ?", tenantID).First(&profile).Error; err == nil {
		status.Profile = &profile
		status.Completed[models.OnboardingStepOrganization] = true
	}

	if tenantType == models.TenantTypeConsultant {
		var clients []models.ClientOrganization
		if err := s.db.Preload("Facilities").Where("tenant_id = ?", tenantID).Find(&clients).Error; err != nil {
			return nil, fmt.Errorf("failed to load client organizations: %w", err)
		}
		status.Clients = clients
		status.Completed[models.OnboardingStepClientOrganization] = len(clients) > 0
		for _, c := range clients {
			if len(c.Facilities) > 0 {
				status.Completed[models.OnboardingStepClientFacility] = true
				break
			}
		}
	} else {
		var facility models.FacilityBaseline
		if err := s.db.Where("tenant_id = ?", tenantID).First(&facility).Error; err == nil {
			status.Facility = &facility
			status.Completed[models.OnboardingStepFacility] = true
		}
	}

	return status, nil
}

// Complete finishes onboarding. All steps for the tenant type must be done.
// Demo tenants get a starter license provisioned on the spot; everyone else
// has their payment confirmation polled for a short window, landing on the
// pricing page if no license shows up in time.
func (s *OnboardingService) Complete(ctx context.Context, tenantID uuid.UUID, tenantType models.TenantType) (*CompletionResult, error) {
	status, err := s.Status(tenantID, tenantType)
	if err != nil {
		return nil, err
	}
	for _, step := range status.Steps {
		if !status.Completed[step] {
			return nil, fmt.Errorf("onboarding step %q is not complete", step)
		}
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	if tenant.IsDemo {
		license, err := s.licenses.AutoProvision(tenantID)
		if err != nil {
			return nil, err
		}
		logrus.WithField("tenant_id", tenantID).Info("Demo tenant license auto-provisioned")
		return &CompletionResult{
			License:         license,
			AutoProvisioned: true,
			NextRoute:       completedRoute(tenantType),
		}, nil
	}

	var license *models.License
	policy := retry.Policy{
		MaxAttempts: s.cfg.Onboarding.LicensePollAttempts,
		Delay:       s.cfg.Onboarding.LicensePollDelay,
	}
	outcome, pollErr := policy.Do(ctx, func(context.Context) error {
		l, err := s.licenses.Status(tenantID)
		if err != nil {
			if errors.Is(err, ErrLicenseNotFound) {
				return retry.ErrNotReady
			}
			return err
		}
		license = l
		return nil
	})

	switch outcome {
	case retry.Success:
		return &CompletionResult{License: license, NextRoute: completedRoute(tenantType)}, nil
	case retry.Exhausted:
		logrus.WithField("tenant_id", tenantID).Info("No active license after poll, routing to pricing")
		return &CompletionResult{NextRoute: "/pricing"}, nil
	default:
		return nil, pollErr
	}
}

// Business tenants go straight into their own intake; consultants land on
// the dashboard where they pick a client to work.
func completedRoute(tenantType models.TenantType) string {
	if tenantType == models.TenantTypeConsultant {
		return "/dashboard"
	}
	return "/intake"
}
