// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.License{},
		&models.OrganizationProfile{},
		&models.FacilityBaseline{},
		&models.ClientOrganization{},
		&models.ClientFacility{},
		&models.IntakeForm{},
		&models.IntakeFacility{},
		&models.Assessment{},
		&models.Question{},
		&models.AssessmentAnswer{},
		&models.ExportRecord{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User and tenant indexes
		"CREATE INDEX IF NOT EXISTS idx_users_tenant_status ON users(tenant_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_tenants_type ON tenants(tenant_type)",

		// License indexes
		"CREATE INDEX IF NOT EXISTS idx_licenses_tenant_status ON licenses(tenant_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_licenses_expires_at ON licenses(expires_at)",

		// Intake indexes
		"CREATE INDEX IF NOT EXISTS idx_intake_forms_tenant_status ON intake_forms(tenant_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_intake_forms_updated_at ON intake_forms(updated_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_intake_facilities_form ON intake_facilities(intake_form_id)",

		// Assessment indexes
		"CREATE INDEX IF NOT EXISTS idx_assessments_tenant ON assessments(tenant_id)",
		"CREATE INDEX IF NOT EXISTS idx_questions_category_sort ON questions(category, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_answers_assessment ON assessment_answers(assessment_id)",

		// Export indexes
		"CREATE INDEX IF NOT EXISTS idx_export_records_assessment ON export_records(assessment_id, created_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_tenant ON audit_logs(tenant_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
