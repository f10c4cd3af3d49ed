// internal/database/seed.go
package database

import (
	"fmt"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/models"
)

type seedQuestion struct {
	Code             string
	Text             string
	Requirements     []string
	Category         string
	EvidenceRequired bool
}

// questionBank is the R2v3 question set. Every question carries at least one
// requirement tag; core-requirement questions (CR1..CR10) apply to every
// assessment, appendix questions (A..G) only when the intake scoping derives
// that appendix.
var questionBank = []seedQuestion{
	// CR1 - Scope
	{"CR1-01", "Does the defined certification scope cover all electronics processing activities performed at the facility?", []string{"CR1"}, "Scope", false},
	{"CR1-02", "Is there a documented scope statement listing every facility, process, and equipment category handled?", []string{"CR1"}, "Scope", true},
	// CR2 - Hierarchy of responsible management strategies
	{"CR2-01", "Is reuse prioritized over materials recovery, and materials recovery over disposal, in the documented management strategy?", []string{"CR2"}, "Reuse Hierarchy", false},
	{"CR2-02", "Are records maintained showing how each incoming stream was directed through the reuse hierarchy?", []string{"CR2"}, "Reuse Hierarchy", true},
	// CR3 - EH&S management system
	{"CR3-01", "Is a certified environmental, health and safety management system in place covering the full scope?", []string{"CR3"}, "EHS", true},
	{"CR3-02", "Are EH&S responsibilities assigned to a named manager with documented authority?", []string{"CR3"}, "EHS", false},
	// CR4 - Legal and other requirements
	{"CR4-01", "Is there a compliance register of applicable legal requirements for each jurisdiction the facility operates in?", []string{"CR4"}, "Legal Compliance", true},
	{"CR4-02", "Are import and export shipments screened against applicable transboundary movement rules?", []string{"CR4"}, "Legal Compliance", false},
	// CR5 - Tracking throughput
	{"CR5-01", "Are inbound and outbound material flows tracked with sufficient records to reconcile throughput?", []string{"CR5"}, "Tracking", true},
	{"CR5-02", "Can the facility trace any outbound lot back to its inbound receipts?", []string{"CR5"}, "Tracking", false},
	// CR6 - Sorting, categorization and processing
	{"CR6-01", "Are incoming electronics sorted and categorized into reuse, recovery, and focus-material streams on receipt?", []string{"CR6"}, "Processing", false},
	{"CR6-02", "Are processing instructions documented for each equipment category in scope?", []string{"CR6"}, "Processing", true},
	// CR7 - Data security
	{"CR7-01", "Is there a data security program covering all data-bearing devices from receipt through sanitization or destruction?", []string{"CR7"}, "Data Security", true},
	{"CR7-02", "Are data-bearing devices stored in access-controlled areas pending sanitization?", []string{"CR7"}, "Data Security", false},
	{"CR7-03", "Is chain of custody maintained for data-bearing devices, with handoffs logged?", []string{"CR7"}, "Data Security", true},
	// CR8 - Focus materials
	{"CR8-01", "Are focus materials identified, managed, and tracked through to final disposition?", []string{"CR8"}, "Focus Materials", true},
	{"CR8-02", "Is a focus materials management plan documented and current?", []string{"CR8"}, "Focus Materials", false},
	// CR9 - Facility requirements
	{"CR9-01", "Does the facility have adequate security controls, insurance, and closure plan for its operations?", []string{"CR9"}, "Facility", true},
	{"CR9-02", "Are storage areas protected from weather and unauthorized access?", []string{"CR9"}, "Facility", false},
	// CR10 - Transport
	{"CR10-01", "Are transport providers evaluated for legal compliance and appropriate insurance?", []string{"CR10"}, "Transport", false},
	{"CR10-02", "Are shipments packaged and labeled to prevent breakage and release of focus materials in transit?", []string{"CR10"}, "Transport", true},

	// Appendix A - Downstream recycling chain
	{"APPA-01", "Are all downstream vendors documented and qualified before any material is shipped to them?", []string{"A", "CR5"}, "Downstream Chain", true},
	{"APPA-02", "Is each downstream vendor audited or verified against the downstream due diligence requirements?", []string{"A"}, "Downstream Chain", true},
	{"APPA-03", "Are international shipments verified as legal in both the exporting and importing country?", []string{"A", "CR4"}, "Downstream Chain", true},
	// Appendix B - Logical data sanitization
	{"APPB-01", "Are logical sanitization methods validated against the documented sanitization plan for each media type?", []string{"B", "CR7"}, "Data Sanitization", true},
	{"APPB-02", "Is a sample of logically sanitized devices quality-checked by a party other than the sanitizer?", []string{"B"}, "Data Sanitization", true},
	// Appendix C - Test and repair
	{"APPC-01", "Are functions of repaired and refurbished equipment tested against the R2 Equipment Categorization before resale?", []string{"C", "CR6"}, "Test and Repair", true},
	{"APPC-02", "Is returned or failed product from reuse channels tracked and reprocessed within scope?", []string{"C"}, "Test and Repair", false},
	// Appendix D - Specialty electronics reuse
	{"APPD-01", "Is specialty equipment evaluated for reuse only by personnel qualified for that equipment class?", []string{"D"}, "Specialty Reuse", true},
	// Appendix E - Materials recovery
	{"APPE-01", "Are materials recovery processes controlled to prevent commingling of focus materials with cleared streams?", []string{"E", "CR8"}, "Materials Recovery", true},
	{"APPE-02", "Are recovery yields and residuals measured and reconciled against inbound volumes?", []string{"E", "CR5"}, "Materials Recovery", false},
	// Appendix F - Brokering
	{"APPF-01", "Does brokered material remain within the documented downstream recycling chain even when not physically handled?", []string{"F", "A"}, "Brokering", true},
	// Appendix G - PV modules
	{"APPG-01", "Are photovoltaic modules evaluated, tested, and tracked under the PV-specific requirements?", []string{"G"}, "PV Modules", true},
	{"APPG-02", "Are damaged PV modules managed as focus material where required?", []string{"G", "CR8"}, "PV Modules", false},
}

// SeedQuestionBank inserts the question bank. Existing codes are left
// untouched so re-running on a live database is safe.
func SeedQuestionBank(db *gorm.DB) error {
	log.Println("Seeding question bank...")

	seeded := 0
	for i, q := range questionBank {
		var count int64
		db.Model(&models.Question{}).Where("code = ?", q.Code).Count(&count)
		if count > 0 {
			continue
		}

		question := &models.Question{
			Code:             q.Code,
			Text:             q.Text,
			Requirements:     pq.StringArray(q.Requirements),
			Category:         q.Category,
			EvidenceRequired: q.EvidenceRequired,
			SortOrder:        (i + 1) * 10,
		}
		if err := db.Create(question).Error; err != nil {
			return fmt.Errorf("failed to seed question %s: %w", q.Code, err)
		}
		seeded++
	}

	log.Printf("Question bank seeding completed (%d new)", seeded)
	return nil
}

// SeedInitialData creates the default admin tenant and user plus the
// question bank.
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		tenant := &models.Tenant{
			Name:       "R2Certify Operations",
			TenantType: models.TenantTypeBusiness,
		}
		if err := db.Create(tenant).Error; err != nil {
			return fmt.Errorf("failed to create admin tenant: %w", err)
		}

		admin := &models.User{
			TenantID: tenant.ID,
			Email:    "admin@r2certify.com",
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
			ProfileData: models.JSONB{
				"first_name": "System",
				"last_name":  "Administrator",
			},
		}
		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}
		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	if err := SeedQuestionBank(db); err != nil {
		return err
	}

	log.Println("Initial data seeding completed")
	return nil
}
