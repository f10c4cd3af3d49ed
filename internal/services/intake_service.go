// internal/services/intake_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/autosave"
	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/scoping"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

var (
	ErrIntakeNotFound         = errors.New("intake form not found")
	ErrIntakeAlreadySubmitted = errors.New("intake form already submitted")
)

// IntakeValidationError carries the field-level issues that block submission.
type IntakeValidationError struct {
	Issues []FieldIssue
}

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *IntakeValidationError) Error() string {
	fields := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		fields[i] = issue.Field
	}
	return "intake form incomplete: " + strings.Join(fields, ", ")
}

type IntakeService struct {
	db  *gorm.DB
	cfg *config.Config

	// Open drafts, keyed by form id. Each draft buffers edits in memory and
	// persists through its debounced saver, so a burst of field changes
	// costs one write.
	mu     sync.Mutex
	drafts map[uuid.UUID]*intakeDraft
}

type intakeDraft struct {
	mu    sync.Mutex
	form  *models.IntakeForm
	saver *autosave.Saver
}

func NewIntakeService(db *gorm.DB, cfg *config.Config) *IntakeService {
	return &IntakeService{
		db:     db,
		cfg:    cfg,
		drafts: make(map[uuid.UUID]*intakeDraft),
	}
}

// IntakeUpdateRequest is a partial update; nil fields are left untouched.
type IntakeUpdateRequest struct {
	CurrentStep *int `json:"current_step"`

	LegalCompanyName           *string   `json:"legal_company_name"`
	DBAName                    *string   `json:"dba_name"`
	BusinessEntityType         *string   `json:"business_entity_type"`
	YearEstablished            *int      `json:"year_established"`
	CertificationType          *string   `json:"certification_type"`
	CertificationStructureType *string   `json:"certification_structure_type"`
	ExistingCertifications     *[]string `json:"existing_certifications"`

	PrimaryContactName  *string `json:"primary_contact_name"`
	PrimaryContactEmail *string `json:"primary_contact_email" validate:"omitempty,email"`
	PrimaryContactPhone *string `json:"primary_contact_phone"`
	EHSManagerName      *string `json:"ehs_manager_name"`
	QualityManagerName  *string `json:"quality_manager_name"`
	TotalEmployees      *string `json:"total_employees" validate:"omitempty,count_field"`
	OperatingSchedule   *string `json:"operating_schedule"`

	TotalFacilities    *string `json:"total_facilities" validate:"omitempty,count_field"`
	FacilityOwnership  *string `json:"facility_ownership"`
	TotalSquareFootage *int    `json:"total_square_footage"`

	ProcessingActivities *[]string `json:"processing_activities"`
	ElectronicsTypes     *[]string `json:"electronics_types"`
	Equipment            *[]string `json:"equipment"`

	TotalDownstreamVendors *string `json:"total_downstream_vendors" validate:"omitempty,count_field"`
	InternationalShipments *bool   `json:"international_shipments"`
	PrimaryCountries       *string `json:"primary_countries"`

	Notes *string `json:"notes"`
}

type ToggleAppendixRequest struct {
	Appendix string `json:"appendix" validate:"required"`
	Enabled  bool   `json:"enabled"`
}

// GetOrCreate returns the tenant's open intake form, creating a fresh draft
// if none exists. Submitted forms are not reopened.
func (s *IntakeService) GetOrCreate(tenantID uuid.UUID) (*models.IntakeForm, error) {
	var form models.IntakeForm
	err := s.db.Where("tenant_id = ? AND status <> ?", tenantID, models.IntakeStatusSubmitted).
		Order("created_at DESC").
		First(&form).Error
	if err == nil {
		return s.draftView(&form), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	form = models.IntakeForm{
		TenantID:    tenantID,
		Status:      models.IntakeStatusDraft,
		CurrentStep: 1,
	}
	s.prefillFromOnboarding(tenantID, &form)
	if err := s.db.Create(&form).Error; err != nil {
		return nil, fmt.Errorf("failed to create intake form: %w", err)
	}
	return &form, nil
}

// prefillFromOnboarding carries the wizard answers into a fresh form so the
// tenant does not retype them. Missing onboarding data is not an error.
func (s *IntakeService) prefillFromOnboarding(tenantID uuid.UUID, form *models.IntakeForm) {
	var profile models.OrganizationProfile
	if err := s.db.Where("tenant_id = ?", tenantID).First(&profile).Error; err == nil {
		form.LegalCompanyName = profile.LegalCompanyName
		form.DBAName = profile.DBAName
		form.BusinessEntityType = profile.BusinessEntityType
		form.YearEstablished = profile.YearEstablished
		form.PrimaryContactName = profile.PrimaryContactName
		form.PrimaryContactPhone = profile.Phone
	}

	var baseline models.FacilityBaseline
	if err := s.db.Where("tenant_id = ?", tenantID).First(&baseline).Error; err == nil {
		form.OperatingSchedule = baseline.OperatingSchedule
		form.ProcessingActivities = baseline.ProcessingActivities
		form.TotalSquareFootage = baseline.SquareFootage
		if baseline.EmployeeCount > 0 {
			form.TotalEmployees = strconv.Itoa(baseline.EmployeeCount)
		}
	}
}

// Get returns a form by id, preferring the in-memory draft when one is open.
func (s *IntakeService) Get(tenantID, formID uuid.UUID) (*models.IntakeForm, error) {
	s.mu.Lock()
	if draft, ok := s.drafts[formID]; ok {
		s.mu.Unlock()
		draft.mu.Lock()
		defer draft.mu.Unlock()
		if draft.form.TenantID != tenantID {
			return nil, ErrIntakeNotFound
		}
		view := *draft.form
		return &view, nil
	}
	s.mu.Unlock()

	var form models.IntakeForm
	if err := s.db.Where("id = ? AND tenant_id = ?", formID, tenantID).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntakeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &form, nil
}

// draftView returns the buffered copy of a form if a draft is open.
func (s *IntakeService) draftView(form *models.IntakeForm) *models.IntakeForm {
	s.mu.Lock()
	draft, ok := s.drafts[form.ID]
	s.mu.Unlock()
	if !ok {
		return form
	}
	draft.mu.Lock()
	defer draft.mu.Unlock()
	view := *draft.form
	return &view
}

// openDraft loads a form into the edit buffer, creating its saver on first
// touch.
func (s *IntakeService) openDraft(tenantID, formID uuid.UUID) (*intakeDraft, error) {
	s.mu.Lock()
	if draft, ok := s.drafts[formID]; ok {
		s.mu.Unlock()
		if draft.form.TenantID != tenantID {
			return nil, ErrIntakeNotFound
		}
		return draft, nil
	}
	s.mu.Unlock()

	var form models.IntakeForm
	if err := s.db.Where("id = ? AND tenant_id = ?", formID, tenantID).First(&form).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntakeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if form.Status == models.IntakeStatusSubmitted {
		return nil, ErrIntakeAlreadySubmitted
	}

	draft := &intakeDraft{form: &form}
	draft.saver = autosave.NewSaver(s.cfg.Intake.AutoSaveDelay, s.persistSnapshot)

	seed, err := json.Marshal(&form)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize intake form: %w", err)
	}
	draft.saver.Seed(seed)

	s.mu.Lock()
	// Another request may have opened the draft meanwhile; keep the winner.
	if existing, ok := s.drafts[formID]; ok {
		s.mu.Unlock()
		draft.saver.Stop()
		return existing, nil
	}
	s.drafts[formID] = draft
	s.mu.Unlock()
	return draft, nil
}

func (s *IntakeService) persistSnapshot(snapshot []byte) error {
	var form models.IntakeForm
	if err := json.Unmarshal(snapshot, &form); err != nil {
		return fmt.Errorf("corrupt intake snapshot: %w", err)
	}
	return s.db.Save(&form).Error
}

// Update merges a partial edit into the draft and schedules a debounced
// save. The returned form is the merged in-memory state, which the database
// catches up to one auto-save cycle later.
func (s *IntakeService) Update(tenantID, formID uuid.UUID, req *IntakeUpdateRequest) (*models.IntakeForm, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	draft, err := s.openDraft(tenantID, formID)
	if err != nil {
		return nil, err
	}

	draft.mu.Lock()
	defer draft.mu.Unlock()

	if draft.form.Status == models.IntakeStatusSubmitted {
		return nil, ErrIntakeAlreadySubmitted
	}

	applyIntakePatch(draft.form, req)

	if !draft.form.AppendixOverride {
		derived := scoping.ComputeApplicableAppendices(
			draft.form.ProcessingActivities,
			draft.form.TotalDownstreamVendors,
			draft.form.InternationalShipments,
		)
		draft.form.ApplicableAppendices = pq.StringArray(scoping.Strings(derived))
	}

	if draft.form.Status == models.IntakeStatusDraft {
		draft.form.Status = models.IntakeStatusInProgress
	}

	snapshot, err := json.Marshal(draft.form)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize intake form: %w", err)
	}
	draft.saver.Update(snapshot)

	view := *draft.form
	return &view, nil
}

func applyIntakePatch(form *models.IntakeForm, req *IntakeUpdateRequest) {
	if req.CurrentStep != nil {
		form.CurrentStep = *req.CurrentStep
	}
	if req.LegalCompanyName != nil {
		form.LegalCompanyName = *req.LegalCompanyName
	}
	if req.DBAName != nil {
		form.DBAName = *req.DBAName
	}
	if req.BusinessEntityType != nil {
		form.BusinessEntityType = *req.BusinessEntityType
	}
	if req.YearEstablished != nil {
		form.YearEstablished = *req.YearEstablished
	}
	if req.CertificationType != nil {
		form.CertificationType = *req.CertificationType
	}
	if req.CertificationStructureType != nil {
		form.CertificationStructureType = *req.CertificationStructureType
	}
	if req.ExistingCertifications != nil {
		form.ExistingCertifications = pq.StringArray(*req.ExistingCertifications)
	}
	if req.PrimaryContactName != nil {
		form.PrimaryContactName = *req.PrimaryContactName
	}
	if req.PrimaryContactEmail != nil {
		form.PrimaryContactEmail = *req.PrimaryContactEmail
	}
	if req.PrimaryContactPhone != nil {
		form.PrimaryContactPhone = *req.PrimaryContactPhone
	}
	if req.EHSManagerName != nil {
		form.EHSManagerName = *req.EHSManagerName
	}
	if req.QualityManagerName != nil {
		form.QualityManagerName = *req.QualityManagerName
	}
	if req.TotalEmployees != nil {
		form.TotalEmployees = *req.TotalEmployees
	}
	if req.OperatingSchedule != nil {
		form.OperatingSchedule = *req.OperatingSchedule
	}
	if req.TotalFacilities != nil {
		form.TotalFacilities = *req.TotalFacilities
	}
	if req.FacilityOwnership != nil {
		form.FacilityOwnership = *req.FacilityOwnership
	}
	if req.TotalSquareFootage != nil {
		form.TotalSquareFootage = *req.TotalSquareFootage
	}
	if req.ProcessingActivities != nil {
		form.ProcessingActivities = pq.StringArray(*req.ProcessingActivities)
	}
	if req.ElectronicsTypes != nil {
		form.ElectronicsTypes = pq.StringArray(*req.ElectronicsTypes)
	}
	if req.Equipment != nil {
		form.Equipment = pq.StringArray(*req.Equipment)
	}
	if req.TotalDownstreamVendors != nil {
		form.TotalDownstreamVendors = *req.TotalDownstreamVendors
	}
	if req.InternationalShipments != nil {
		form.InternationalShipments = *req.InternationalShipments
	}
	if req.PrimaryCountries != nil {
		form.PrimaryCountries = *req.PrimaryCountries
	}
	if req.Notes != nil {
		form.Notes = *req.Notes
	}
}

// ToggleAppendix flips one appendix manually. The first toggle marks the
// form as overridden; from then on scoping edits no longer rewrite the set.
// The change persists immediately rather than waiting for the auto-save.
func (s *IntakeService) ToggleAppendix(tenantID, formID uuid.UUID, req *ToggleAppendixRequest) (*models.IntakeForm, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if !scoping.IsAppendixTag(req.Appendix) {
		return nil, fmt.Errorf("invalid appendix %q", req.Appendix)
	}

	draft, err := s.openDraft(tenantID, formID)
	if err != nil {
		return nil, err
	}

	draft.mu.Lock()
	defer draft.mu.Unlock()

	if draft.form.Status == models.IntakeStatusSubmitted {
		return nil, ErrIntakeAlreadySubmitted
	}

	appendix := strings.ToUpper(strings.TrimSpace(req.Appendix))
	current := make([]string, 0, len(draft.form.ApplicableAppendices))
	for _, a := range draft.form.ApplicableAppendices {
		if a != appendix {
			current = append(current, a)
		}
	}
	if req.Enabled {
		current = append(current, appendix)
	}
	sort.Strings(current)

	draft.form.ApplicableAppendices = pq.StringArray(current)
	draft.form.AppendixOverride = true

	snapshot, err := json.Marshal(draft.form)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize intake form: %w", err)
	}
	draft.saver.Update(snapshot)
	if err := draft.saver.Flush(); err != nil {
		return nil, fmt.Errorf("failed to persist appendix override: %w", err)
	}

	view := *draft.form
	return &view, nil
}

// ValidateForSubmit checks the submit gate without submitting, so clients
// can render the same issues the server would reject with.
func (s *IntakeService) ValidateForSubmit(form *models.IntakeForm) []FieldIssue {
	var issues []FieldIssue
	require := func(field, value, message string) {
		if strings.TrimSpace(value) == "" {
			issues = append(issues, FieldIssue{Field: field, Message: message})
		}
	}

	require("legal_company_name", form.LegalCompanyName, "legal company name is required")
	require("business_entity_type", form.BusinessEntityType, "business entity type is required")
	require("certification_type", form.CertificationType, "certification type is required")
	require("certification_structure_type", form.CertificationStructureType, "certification structure is required")
	require("total_employees", form.TotalEmployees, "total employees is required")
	require("total_facilities", form.TotalFacilities, "total facilities is required")
	require("operating_schedule", form.OperatingSchedule, "operating schedule is required")

	requireList := func(field string, values []string, message string) {
		if len(values) == 0 {
			issues = append(issues, FieldIssue{Field: field, Message: message})
		}
	}
	requireList("processing_activities", form.ProcessingActivities, "at least one processing activity is required")
	requireList("equipment", form.Equipment, "at least one equipment entry is required")
	requireList("electronics_types", form.ElectronicsTypes, "at least one electronics type is required")

	// "0" is a present answer; only a blank field fails.
	if !scoping.VendorCountPresent(form.TotalDownstreamVendors) {
		issues = append(issues, FieldIssue{
			Field:   "total_downstream_vendors",
			Message: "downstream vendor count is required",
		})
	}

	if form.InternationalShipments && strings.TrimSpace(form.PrimaryCountries) == "" {
		issues = append(issues, FieldIssue{
			Field:   "primary_countries",
			Message: "primary countries are required when shipping internationally",
		})
	}

	return issues
}

// Submit flushes pending edits, validates, freezes the form, and opens the
// assessment sized to the form's applicable scope.
func (s *IntakeService) Submit(tenantID, formID, userID uuid.UUID) (*models.Assessment, error) {
	draft, err := s.openDraft(tenantID, formID)
	if err != nil {
		return nil, err
	}

	draft.mu.Lock()
	defer draft.mu.Unlock()

	if draft.form.Status == models.IntakeStatusSubmitted {
		return nil, ErrIntakeAlreadySubmitted
	}

	if issues := s.ValidateForSubmit(draft.form); len(issues) > 0 {
		return nil, &IntakeValidationError{Issues: issues}
	}

	// Pending edits must land before the status flip.
	if err := draft.saver.Flush(); err != nil {
		return nil, fmt.Errorf("failed to persist intake form: %w", err)
	}

	total, err := s.countQuestionsInScope(draft.form.ApplicableAppendices)
	if err != nil {
		return nil, err
	}

	// The status flip lands on a copy; the live draft takes it only after
	// the commit, so a failed transaction leaves the form editable and the
	// retry accepted.
	now := time.Now()
	submitted := *draft.form
	submitted.Status = models.IntakeStatusSubmitted
	submitted.SubmittedAt = &now
	submitted.SubmittedBy = &userID

	assessment := &models.Assessment{
		TenantID:       tenantID,
		IntakeFormID:   formID,
		Status:         models.AssessmentStatusNotStarted,
		TotalQuestions: total,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&submitted).Error; err != nil {
			return fmt.Errorf("failed to submit intake form: %w", err)
		}
		if err := tx.Create(assessment).Error; err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	*draft.form = submitted

	// The form is frozen; retire its draft buffer.
	draft.saver.Stop()
	s.mu.Lock()
	delete(s.drafts, formID)
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"tenant_id":       tenantID,
		"intake_form_id":  formID,
		"total_questions": total,
		"appendices":      draft.form.ApplicableAppendices,
	}).Info("Intake form submitted")

	return assessment, nil
}

func (s *IntakeService) countQuestionsInScope(applicable []string) (int, error) {
	var questions []models.Question
	if err := s.db.Find(&questions).Error; err != nil {
		return 0, fmt.Errorf("failed to load question bank: %w", err)
	}
	count := 0
	for _, q := range questions {
		if scoping.InScope(q.Requirements, applicable) {
			count++
		}
	}
	return count, nil
}

// FlushAll persists every dirty draft. Called on shutdown.
func (s *IntakeService) FlushAll() {
	s.mu.Lock()
	drafts := make([]*intakeDraft, 0, len(s.drafts))
	for _, d := range s.drafts {
		drafts = append(drafts, d)
	}
	s.mu.Unlock()

	for _, d := range drafts {
		if err := d.saver.Flush(); err != nil {
			logrus.WithError(err).Error("Failed to flush intake draft on shutdown")
		}
		d.saver.Stop()
	}
}

type IntakeFacilityRequest struct {
	Name                 string   `json:"name" validate:"required"`
	Role                 string   `json:"role"`
	EmployeeCount        int      `json:"employee_count"`
	ProcessingActivities []string `json:"processing_activities"`
	AddressLine1         string   `json:"address_line1"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	Country              string   `json:"country"`
}

func (s *IntakeService) ListFacilities(tenantID, formID uuid.UUID) ([]models.IntakeFacility, error) {
	if _, err := s.Get(tenantID, formID); err != nil {
		return nil, err
	}
	var facilities []models.IntakeFacility
	if err := s.db.Where("intake_form_id = ?", formID).Order("created_at").Find(&facilities).Error; err != nil {
		return nil, fmt.Errorf("failed to load facilities: %w", err)
	}
	return facilities, nil
}

func (s *IntakeService) AddFacility(tenantID, formID uuid.UUID, req *IntakeFacilityRequest) (*models.IntakeFacility, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	form, err := s.Get(tenantID, formID)
	if err != nil {
		return nil, err
	}
	if form.Status == models.IntakeStatusSubmitted {
		return nil, ErrIntakeAlreadySubmitted
	}

	facility := &models.IntakeFacility{
		IntakeFormID:         formID,
		TenantID:             tenantID,
		Name:                 req.Name,
		Role:                 req.Role,
		EmployeeCount:        req.EmployeeCount,
		ProcessingActivities: pq.StringArray(req.ProcessingActivities),
		AddressLine1:         req.AddressLine1,
		City:                 req.City,
		State:                req.State,
		Country:              req.Country,
	}
	if err := s.db.Create(facility).Error; err != nil {
		return nil, fmt.Errorf("failed to create facility: %w", err)
	}
	return facility, nil
}

func (s *IntakeService) UpdateFacility(tenantID, facilityID uuid.UUID, req *IntakeFacilityRequest) (*models.IntakeFacility, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var facility models.IntakeFacility
	if err := s.db.Where("id = ? AND tenant_id = ?", facilityID, tenantID).First(&facility).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("facility not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	facility.Name = req.Name
	facility.Role = req.Role
	facility.EmployeeCount = req.EmployeeCount
	facility.ProcessingActivities = pq.StringArray(req.ProcessingActivities)
	facility.AddressLine1 = req.AddressLine1
	facility.City = req.City
	facility.State = req.State
	facility.Country = req.Country

	if err := s.db.Save(&facility).Error; err != nil {
		return nil, fmt.Errorf("failed to update facility: %w", err)
	}
	return &facility, nil
}

func (s *IntakeService) DeleteFacility(tenantID, facilityID uuid.UUID) error {
	result := s.db.Where("id = ? AND tenant_id = ?", facilityID, tenantID).Delete(&models.IntakeFacility{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete facility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("facility not found")
	}
	return nil
}
