// internal/services/license_repository.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/models"
)

var ErrLicenseNotFound = errors.New("license not found")

// LicenseRepository abstracts license persistence so activation logic can be
// exercised without a database.
type LicenseRepository interface {
	FindBySessionID(sessionID string) (*models.License, error)
	FindActiveByTenant(tenantID uuid.UUID) (*models.License, error)
	ListByTenant(tenantID uuid.UUID) ([]models.License, error)
	Create(license *models.License) error
}

type gormLicenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &gormLicenseRepository{db: db}
}

func (r *gormLicenseRepository) FindBySessionID(sessionID string) (*models.License, error) {
	var license models.License
	if err := r.db.Where("stripe_session_id = ?", sessionID).First(&license).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &license, nil
}

func (r *gormLicenseRepository) FindActiveByTenant(tenantID uuid.UUID) (*models.License, error) {
	var license models.License
	err := r.db.Where("tenant_id = ? AND status = ?", tenantID, models.LicenseStatusActive).
		Order("created_at DESC").
		First(&license).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &license, nil
}

func (r *gormLicenseRepository) ListByTenant(tenantID uuid.UUID) ([]models.License, error) {
	var licenses []models.License
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&licenses).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return licenses, nil
}

func (r *gormLicenseRepository) Create(license *models.License) error {
	return r.db.Create(license).Error
}
