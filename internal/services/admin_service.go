// internal/services/admin_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

// AdminService serves the platform-operator views: tenant roster, audit
// trail, and high-level counters.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type DashboardStats struct {
	TotalTenants         int64 `json:"total_tenants"`
	DemoTenants          int64 `json:"demo_tenants"`
	ActiveLicenses       int64 `json:"active_licenses"`
	SubmittedIntakes     int64 `json:"submitted_intakes"`
	CompletedAssessments int64 `json:"completed_assessments"`
	ExportsGenerated     int64 `json:"exports_generated"`
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalTenants, s.db.Model(&models.Tenant{})},
		{&stats.DemoTenants, s.db.Model(&models.Tenant{}).Where("is_demo = ?", true)},
		{&stats.ActiveLicenses, s.db.Model(&models.License{}).Where("status = ?", models.LicenseStatusActive)},
		{&stats.SubmittedIntakes, s.db.Model(&models.IntakeForm{}).Where("status = ?", models.IntakeStatusSubmitted)},
		{&stats.CompletedAssessments, s.db.Model(&models.Assessment{}).Where("status = ?", models.AssessmentStatusCompleted)},
		{&stats.ExportsGenerated, s.db.Model(&models.ExportRecord{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
		}
	}

	return stats, nil
}

func (s *AdminService) ListTenants(params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Tenant{})

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}
	if params.Status != "" {
		query = query.Where("tenant_type = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count tenants: %w", err)
	}

	var tenants []models.Tenant
	query = utils.ApplySort(query, params, []string{"created_at", "name", "tenant_type"})
	if err := utils.ApplyPagination(query, params).Find(&tenants).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list tenants: %w", err)
	}

	return utils.CreatePaginationResult(tenants, total, params), nil
}

func (s *AdminService) ListAuditLogs(tenantID *uuid.UUID, params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{})

	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if params.Search != "" {
		query = query.Where("action ILIKE ? OR resource_type ILIKE ?",
			"%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params, []string{"created_at", "action", "resource_type"})
	if err := utils.ApplyPagination(query, params).Find(&logs).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return utils.CreatePaginationResult(logs, total, params), nil
}
