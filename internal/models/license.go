// internal/models/license.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// License is a purchased capacity entitlement for a tenant. It is created
// exactly once per checkout session (the unique index on StripeSessionID
// backs the idempotent activation) and is read-only after activation.
type License struct {
	BaseModel
	TenantID        uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	PlanID          string        `json:"plan_id" gorm:"size:100;not null"`
	PlanName        string        `json:"plan_name" gorm:"size:255"`
	Tier            LicenseTier   `json:"tier" gorm:"type:varchar(20);not null"`
	Status          LicenseStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	MaxFacilities   int           `json:"max_facilities" gorm:"default:1"`
	MaxSeats        int           `json:"max_seats" gorm:"default:1"`
	MaxClients      int           `json:"max_clients" gorm:"default:0"`
	SupportTier     SupportTier   `json:"support_tier" gorm:"type:varchar(20);default:'standard'"`
	AmountPaid      float64       `json:"amount_paid" gorm:"type:decimal(10,2);default:0"`
	Currency        string        `json:"currency" gorm:"size:3;default:'usd'"`
	StripeSessionID *string       `json:"stripe_session_id,omitempty" gorm:"uniqueIndex;size:255"`
	AutoProvisioned bool          `json:"auto_provisioned" gorm:"default:false"`
	ActivatedAt     *time.Time    `json:"activated_at"`
	ExpiresAt       *time.Time    `json:"expires_at"`

	// Relationships
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// Active reports whether the license currently entitles the tenant.
func (l *License) Active() bool {
	if l.Status != LicenseStatusActive {
		return false
	}
	if l.ExpiresAt != nil && time.Now().After(*l.ExpiresAt) {
		return false
	}
	return true
}

// LicensePlan describes a purchasable plan. The catalog is static; the
// plan id is what checkout sessions and licenses reference.
type LicensePlan struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Tier          LicenseTier `json:"tier"`
	Amount        float64     `json:"amount"`
	Currency      string      `json:"currency"`
	MaxFacilities int         `json:"max_facilities"`
	MaxSeats      int         `json:"max_seats"`
	MaxClients    int         `json:"max_clients"`
	SupportTier   SupportTier `json:"support_tier"`
}
