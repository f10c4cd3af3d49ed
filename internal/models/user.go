// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Tenant is an organization account. Its type governs onboarding branching:
// business tenants manage their own facilities, consultant tenants manage
// client organizations on their behalf.
type Tenant struct {
	BaseModel
	Name       string     `json:"name" gorm:"size:255;not null"`
	TenantType TenantType `json:"tenant_type" gorm:"type:varchar(20);not null;default:'business'"`
	IsDemo     bool       `json:"is_demo" gorm:"default:false"`

	// Relationships
	Users       []User       `json:"users,omitempty" gorm:"foreignKey:TenantID"`
	Licenses    []License    `json:"licenses,omitempty" gorm:"foreignKey:TenantID"`
	IntakeForms []IntakeForm `json:"intake_forms,omitempty" gorm:"foreignKey:TenantID"`
}

type User struct {
	BaseModel
	TenantID        uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	FirstName       string     `json:"first_name" gorm:"size:100"`
	LastName        string     `json:"last_name" gorm:"size:100"`
	Role            UserRole   `json:"role" gorm:"type:varchar(20);default:'member'"`
	Status          UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData     JSONB      `json:"profile_data" gorm:"type:jsonb"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
