// internal/models/intake_form.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// IntakeForm is the 12-section scoping questionnaire. Most fields are
// optional until submission; ValidateForSubmit in the intake service mirrors
// the submit gate. ApplicableAppendices is derived from the scoping inputs
// unless AppendixOverride is set, which happens the moment a user toggles an
// appendix directly and then persists for the life of the form.
type IntakeForm struct {
	BaseModel
	TenantID    uuid.UUID    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Status      IntakeStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	CurrentStep int          `json:"current_step" gorm:"default:1"`

	// Section 1-2: legal entity and certification scope
	LegalCompanyName           string         `json:"legal_company_name" gorm:"size:255"`
	DBAName                    string         `json:"dba_name" gorm:"size:255"`
	BusinessEntityType         string         `json:"business_entity_type" gorm:"size:100"`
	YearEstablished            int            `json:"year_established"`
	CertificationType          string         `json:"certification_type" gorm:"size:100"`
	CertificationStructureType string         `json:"certification_structure_type" gorm:"size:100"`
	ExistingCertifications     pq.StringArray `json:"existing_certifications" gorm:"type:text[]"`

	// Section 3-4: personnel
	PrimaryContactName  string `json:"primary_contact_name" gorm:"size:255"`
	PrimaryContactEmail string `json:"primary_contact_email" gorm:"size:255"`
	PrimaryContactPhone string `json:"primary_contact_phone" gorm:"size:50"`
	EHSManagerName      string `json:"ehs_manager_name" gorm:"size:255"`
	QualityManagerName  string `json:"quality_manager_name" gorm:"size:255"`
	TotalEmployees      string `json:"total_employees" gorm:"size:20"`
	OperatingSchedule   string `json:"operating_schedule" gorm:"size:100"`

	// Section 5-6: facilities and workforce
	TotalFacilities    string `json:"total_facilities" gorm:"size:20"`
	FacilityOwnership  string `json:"facility_ownership" gorm:"size:100"`
	TotalSquareFootage int    `json:"total_square_footage"`

	// Section 7-9: processing scope
	ProcessingActivities pq.StringArray `json:"processing_activities" gorm:"type:text[]"`
	ElectronicsTypes     pq.StringArray `json:"electronics_types" gorm:"type:text[]"`
	Equipment            pq.StringArray `json:"equipment" gorm:"type:text[]"`

	// Section 10-11: downstream chain
	TotalDownstreamVendors string `json:"total_downstream_vendors" gorm:"size:20"`
	InternationalShipments bool   `json:"international_shipments"`
	PrimaryCountries       string `json:"primary_countries" gorm:"type:text"`

	// Section 12: derived scope
	ApplicableAppendices pq.StringArray `json:"applicable_appendices" gorm:"type:text[]"`
	AppendixOverride     bool           `json:"appendix_override" gorm:"default:false"`

	// Administrative metadata
	Notes       string     `json:"notes" gorm:"type:text"`
	SubmittedAt *time.Time `json:"submitted_at"`
	SubmittedBy *uuid.UUID `json:"submitted_by" gorm:"type:uuid"`

	// Relationships
	Tenant     Tenant           `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Facilities []IntakeFacility `json:"facilities,omitempty" gorm:"foreignKey:IntakeFormID"`
	Assessment *Assessment      `json:"assessment,omitempty" gorm:"foreignKey:IntakeFormID"`
}

// IntakeFacility is a per-site record attached to an intake form.
type IntakeFacility struct {
	BaseModel
	IntakeFormID         uuid.UUID      `json:"intake_form_id" gorm:"type:uuid;not null;index"`
	TenantID             uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name                 string         `json:"name" gorm:"size:255;not null"`
	Role                 string         `json:"role" gorm:"size:100"`
	EmployeeCount        int            `json:"employee_count"`
	ProcessingActivities pq.StringArray `json:"processing_activities" gorm:"type:text[]"`
	AddressLine1         string         `json:"address_line1" gorm:"size:255"`
	City                 string         `json:"city" gorm:"size:100"`
	State                string         `json:"state" gorm:"size:100"`
	Country              string         `json:"country" gorm:"size:100"`

	IntakeForm IntakeForm `json:"intake_form,omitempty" gorm:"foreignKey:IntakeFormID"`
}
