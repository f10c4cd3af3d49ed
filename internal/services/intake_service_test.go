// internal/services/intake_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/autosave"
	"github.com/r2certify/r2v3-backend/internal/models"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock
}

// seedDraft places a form into the service's edit buffer with a saver that
// persists nowhere, so draft operations run without a database.
func seedDraft(svc *IntakeService, form *models.IntakeForm) *intakeDraft {
	draft := &intakeDraft{
		form:  form,
		saver: autosave.NewSaver(time.Hour, func([]byte) error { return nil }),
	}
	svc.drafts[form.ID] = draft
	return draft
}

func validSubmittableForm() *models.IntakeForm {
	return &models.IntakeForm{
		LegalCompanyName:           "Acme Recycling LLC",
		BusinessEntityType:         "LLC",
		CertificationType:          "R2v3",
		CertificationStructureType: "Single Facility",
		PrimaryContactName:         "Pat Jones",
		PrimaryContactEmail:        "pat@acme.example",
		TotalEmployees:             "42",
		TotalFacilities:            "1",
		OperatingSchedule:          "Mon-Fri 8am-5pm",
		ProcessingActivities:       pq.StringArray{"Testing", "Repair"},
		Equipment:                  pq.StringArray{"Shredder"},
		ElectronicsTypes:           pq.StringArray{"IT Equipment"},
		TotalDownstreamVendors:     "3",
	}
}

func issueFields(issues []FieldIssue) []string {
	fields := make([]string, len(issues))
	for i, issue := range issues {
		fields[i] = issue.Field
	}
	return fields
}

func TestValidateForSubmitCompleteForm(t *testing.T) {
	svc := &IntakeService{}
	assert.Empty(t, svc.ValidateForSubmit(validSubmittableForm()))
}

func TestValidateForSubmitZeroVendorsIsValid(t *testing.T) {
	svc := &IntakeService{}
	form := validSubmittableForm()

	// "0" is a present answer, not a missing one.
	form.TotalDownstreamVendors = "0"
	assert.Empty(t, svc.ValidateForSubmit(form))
}

func TestValidateForSubmitBlankVendorsIsInvalid(t *testing.T) {
	svc := &IntakeService{}
	form := validSubmittableForm()

	form.TotalDownstreamVendors = "   "
	issues := svc.ValidateForSubmit(form)
	assert.Contains(t, issueFields(issues), "total_downstream_vendors")
}

func TestValidateForSubmitInternationalNeedsCountries(t *testing.T) {
	svc := &IntakeService{}
	form := validSubmittableForm()

	form.InternationalShipments = true
	form.PrimaryCountries = ""
	issues := svc.ValidateForSubmit(form)
	assert.Contains(t, issueFields(issues), "primary_countries")

	form.PrimaryCountries = "Canada, Mexico"
	assert.Empty(t, svc.ValidateForSubmit(form))
}

func TestValidateForSubmitDomesticSkipsCountries(t *testing.T) {
	svc := &IntakeService{}
	form := validSubmittableForm()

	form.InternationalShipments = false
	form.PrimaryCountries = ""
	assert.Empty(t, svc.ValidateForSubmit(form))
}

func TestValidateForSubmitMissingRequiredFields(t *testing.T) {
	svc := &IntakeService{}
	issues := svc.ValidateForSubmit(&models.IntakeForm{})
	fields := issueFields(issues)

	assert.Contains(t, fields, "legal_company_name")
	assert.Contains(t, fields, "business_entity_type")
	assert.Contains(t, fields, "certification_type")
	assert.Contains(t, fields, "certification_structure_type")
	assert.Contains(t, fields, "total_employees")
	assert.Contains(t, fields, "total_facilities")
	assert.Contains(t, fields, "operating_schedule")
	assert.Contains(t, fields, "processing_activities")
	assert.Contains(t, fields, "equipment")
	assert.Contains(t, fields, "electronics_types")
	assert.Contains(t, fields, "total_downstream_vendors")
}

func TestValidateForSubmitContactFieldsOptional(t *testing.T) {
	svc := &IntakeService{}
	form := validSubmittableForm()

	form.PrimaryContactName = ""
	form.PrimaryContactEmail = ""
	assert.Empty(t, svc.ValidateForSubmit(form))
}

func TestApplyIntakePatchMergesOnlyProvidedFields(t *testing.T) {
	form := validSubmittableForm()
	name := "New Name Inc"
	international := true
	activities := []string{"Materials Recovery"}

	applyIntakePatch(form, &IntakeUpdateRequest{
		LegalCompanyName:       &name,
		InternationalShipments: &international,
		ProcessingActivities:   &activities,
	})

	assert.Equal(t, "New Name Inc", form.LegalCompanyName)
	assert.True(t, form.InternationalShipments)
	assert.Equal(t, pq.StringArray{"Materials Recovery"}, form.ProcessingActivities)

	// Untouched fields keep their values.
	assert.Equal(t, "R2v3", form.CertificationType)
	assert.Equal(t, "3", form.TotalDownstreamVendors)
}

func TestApplyIntakePatchAllowsClearingToEmpty(t *testing.T) {
	form := validSubmittableForm()
	empty := ""

	applyIntakePatch(form, &IntakeUpdateRequest{DBAName: &empty, Notes: &empty})

	assert.Equal(t, "", form.DBAName)
	assert.Equal(t, "", form.Notes)
}

func TestUpdateAfterManualToggleKeepsAppendices(t *testing.T) {
	svc := NewIntakeService(nil, nil)
	tenantID, formID := uuid.New(), uuid.New()
	seedDraft(svc, &models.IntakeForm{
		BaseModel:            models.BaseModel{ID: formID},
		TenantID:             tenantID,
		Status:               models.IntakeStatusInProgress,
		ProcessingActivities: pq.StringArray{"Testing"},
	})

	// While no override is in place, scoping edits rewrite the derived set.
	international := true
	updated, err := svc.Update(tenantID, formID, &IntakeUpdateRequest{InternationalShipments: &international})
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"A", "C"}, updated.ApplicableAppendices)
	assert.False(t, updated.AppendixOverride)

	toggled, err := svc.ToggleAppendix(tenantID, formID, &ToggleAppendixRequest{Appendix: "G", Enabled: true})
	require.NoError(t, err)
	assert.True(t, toggled.AppendixOverride)
	assert.Equal(t, pq.StringArray{"A", "C", "G"}, toggled.ApplicableAppendices)

	// The manual toggle freezes the set; later scoping edits leave it alone.
	activities := []string{"Materials Recovery"}
	after, err := svc.Update(tenantID, formID, &IntakeUpdateRequest{ProcessingActivities: &activities})
	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"A", "C", "G"}, after.ApplicableAppendices)
	assert.True(t, after.AppendixOverride)
}

func TestSubmitFailedTransactionLeavesDraftEditable(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	svc := NewIntakeService(gormDB, nil)

	tenantID, formID, userID := uuid.New(), uuid.New(), uuid.New()
	form := validSubmittableForm()
	form.ID = formID
	form.TenantID = tenantID
	form.Status = models.IntakeStatusInProgress
	draft := seedDraft(svc, form)

	mock.ExpectQuery(`SELECT \* FROM "questions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin().WillReturnError(errors.New("connection reset by peer"))

	_, err := svc.Submit(tenantID, formID, userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIntakeAlreadySubmitted)

	// The failure leaves the draft untouched, not marked submitted.
	assert.Equal(t, models.IntakeStatusInProgress, draft.form.Status)
	assert.Nil(t, draft.form.SubmittedAt)
	assert.Nil(t, draft.form.SubmittedBy)

	// The retry reaches the database again instead of bouncing off a stale
	// submitted flag.
	mock.ExpectQuery(`SELECT \* FROM "questions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin().WillReturnError(errors.New("connection reset by peer"))

	_, err = svc.Submit(tenantID, formID, userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIntakeAlreadySubmitted)
	assert.Equal(t, models.IntakeStatusInProgress, draft.form.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}
