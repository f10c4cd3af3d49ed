// internal/models/onboarding.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Onboarding records are collected step by step before licensing. Each step
// is an idempotent upsert keyed by tenant, so back-navigation in the wizard
// never discards validated data.

type OrganizationProfile struct {
	BaseModel
	TenantID           uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex"`
	LegalCompanyName   string    `json:"legal_company_name" gorm:"size:255;not null"`
	DBAName            string    `json:"dba_name" gorm:"size:255"`
	BusinessEntityType string    `json:"business_entity_type" gorm:"size:100"`
	YearEstablished    int       `json:"year_established"`
	Website            string    `json:"website" gorm:"size:255"`
	PrimaryContactName string    `json:"primary_contact_name" gorm:"size:255"`
	PrimaryContactRole string    `json:"primary_contact_role" gorm:"size:100"`
	Phone              string    `json:"phone" gorm:"size:50"`
	AddressLine1       string    `json:"address_line1" gorm:"size:255"`
	AddressLine2       string    `json:"address_line2" gorm:"size:255"`
	City               string    `json:"city" gorm:"size:100"`
	State              string    `json:"state" gorm:"size:100"`
	PostalCode         string    `json:"postal_code" gorm:"size:20"`
	Country            string    `json:"country" gorm:"size:100"`

	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

type FacilityBaseline struct {
	BaseModel
	TenantID             uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex"`
	FacilityName         string         `json:"facility_name" gorm:"size:255;not null"`
	SquareFootage        int            `json:"square_footage"`
	EmployeeCount        int            `json:"employee_count"`
	OperatingSchedule    string         `json:"operating_schedule" gorm:"size:100"`
	ProcessingActivities pq.StringArray `json:"processing_activities" gorm:"type:text[]"`
	AddressLine1         string         `json:"address_line1" gorm:"size:255"`
	City                 string         `json:"city" gorm:"size:100"`
	State                string         `json:"state" gorm:"size:100"`
	PostalCode           string         `json:"postal_code" gorm:"size:20"`
	Country              string         `json:"country" gorm:"size:100"`

	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// Consultant tenants collect the same shape of data on behalf of a client.

type ClientOrganization struct {
	BaseModel
	TenantID            uuid.UUID `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LegalCompanyName    string    `json:"legal_company_name" gorm:"size:255;not null"`
	BusinessEntityType  string    `json:"business_entity_type" gorm:"size:100"`
	PrimaryContactName  string    `json:"primary_contact_name" gorm:"size:255"`
	PrimaryContactEmail string    `json:"primary_contact_email" gorm:"size:255"`
	Phone               string    `json:"phone" gorm:"size:50"`
	Country             string    `json:"country" gorm:"size:100"`

	Tenant     Tenant           `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	Facilities []ClientFacility `json:"facilities,omitempty" gorm:"foreignKey:ClientOrganizationID"`
}

type ClientFacility struct {
	BaseModel
	TenantID             uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	ClientOrganizationID uuid.UUID      `json:"client_organization_id" gorm:"type:uuid;not null;index"`
	FacilityName         string         `json:"facility_name" gorm:"size:255;not null"`
	EmployeeCount        int            `json:"employee_count"`
	ProcessingActivities pq.StringArray `json:"processing_activities" gorm:"type:text[]"`
	AddressLine1         string         `json:"address_line1" gorm:"size:255"`
	City                 string         `json:"city" gorm:"size:100"`
	Country              string         `json:"country" gorm:"size:100"`

	ClientOrganization ClientOrganization `json:"client_organization,omitempty" gorm:"foreignKey:ClientOrganizationID"`
}
