// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type TenantType string

const (
	TenantTypeBusiness   TenantType = "business"
	TenantTypeConsultant TenantType = "consultant"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type UserRole string

const (
	UserRoleOwner  UserRole = "owner"
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

type IntakeStatus string

const (
	IntakeStatusDraft      IntakeStatus = "draft"
	IntakeStatusInProgress IntakeStatus = "in_progress"
	IntakeStatusSubmitted  IntakeStatus = "submitted"
)

type AssessmentStatus string

const (
	AssessmentStatusNotStarted AssessmentStatus = "not_started"
	AssessmentStatusInProgress AssessmentStatus = "in_progress"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
)

type LicenseStatus string

const (
	LicenseStatusPending LicenseStatus = "pending"
	LicenseStatusActive  LicenseStatus = "active"
	LicenseStatusExpired LicenseStatus = "expired"
)

type LicenseTier string

const (
	LicenseTierStarter      LicenseTier = "starter"
	LicenseTierProfessional LicenseTier = "professional"
	LicenseTierEnterprise   LicenseTier = "enterprise"
)

type SupportTier string

const (
	SupportTierStandard  SupportTier = "standard"
	SupportTierPriority  SupportTier = "priority"
	SupportTierDedicated SupportTier = "dedicated"
)

type OnboardingStep string

const (
	OnboardingStepOrganization       OnboardingStep = "organization"
	OnboardingStepFacility           OnboardingStep = "facility"
	OnboardingStepClientOrganization OnboardingStep = "client_organization"
	OnboardingStepClientFacility     OnboardingStep = "client_facility"
)

type ExportFormat string

const (
	ExportFormatPDF   ExportFormat = "pdf"
	ExportFormatExcel ExportFormat = "excel"
	ExportFormatWord  ExportFormat = "word"
	ExportFormatEmail ExportFormat = "email"
)

func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatPDF, ExportFormatExcel, ExportFormatWord, ExportFormatEmail:
		return true
	}
	return false
}
