// internal/models/assessment.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Assessment is created when an intake form is submitted. The question set is
// filtered by the form's applicable appendices; progress counters track
// answers and attached evidence.
type Assessment struct {
	BaseModel
	TenantID       uuid.UUID        `json:"tenant_id" gorm:"type:uuid;not null;index"`
	IntakeFormID   uuid.UUID        `json:"intake_form_id" gorm:"type:uuid;not null;uniqueIndex"`
	Status         AssessmentStatus `json:"status" gorm:"type:varchar(20);default:'not_started';index"`
	AnsweredCount  int              `json:"answered_count" gorm:"default:0"`
	EvidenceCount  int              `json:"evidence_count" gorm:"default:0"`
	TotalQuestions int              `json:"total_questions" gorm:"default:0"`
	CompletedAt    *time.Time       `json:"completed_at"`

	// Relationships
	Tenant     Tenant             `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
	IntakeForm IntakeForm         `json:"intake_form,omitempty" gorm:"foreignKey:IntakeFormID"`
	Answers    []AssessmentAnswer `json:"answers,omitempty" gorm:"foreignKey:AssessmentID"`
}

// Question is one entry of the R2v3 question bank. Requirements holds the
// core-requirement and appendix tags ("CR1".."CR10", "A".."G") that drive
// scope filtering; EvidenceRequired questions only count as answered once
// evidence is attached.
type Question struct {
	BaseModel
	Code             string         `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Text             string         `json:"text" gorm:"type:text;not null"`
	Requirements     pq.StringArray `json:"requirements" gorm:"type:text[]"`
	Category         string         `json:"category" gorm:"size:100;index"`
	EvidenceRequired bool           `json:"evidence_required" gorm:"default:false"`
	SortOrder        int            `json:"sort_order" gorm:"default:0"`
}

type AssessmentAnswer struct {
	BaseModel
	AssessmentID uuid.UUID `json:"assessment_id" gorm:"type:uuid;not null;index:idx_answers_assessment_question,unique"`
	QuestionID   uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index:idx_answers_assessment_question,unique"`
	Response     string    `json:"response" gorm:"type:text"`
	EvidenceURL  string    `json:"evidence_url" gorm:"size:1024"`
	EvidenceKey  string    `json:"evidence_key" gorm:"size:512"`
	AnsweredBy   uuid.UUID `json:"answered_by" gorm:"type:uuid"`

	Assessment Assessment `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Question   Question   `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

// ExportRecord tracks a generated report artifact.
type ExportRecord struct {
	BaseModel
	AssessmentID uuid.UUID    `json:"assessment_id" gorm:"type:uuid;not null;index"`
	TenantID     uuid.UUID    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Format       ExportFormat `json:"format" gorm:"type:varchar(10);not null"`
	StorageKey   string       `json:"storage_key" gorm:"size:512"`
	URL          string       `json:"url" gorm:"size:1024"`
	ContentHash  string       `json:"content_hash" gorm:"size:64"`
	EmailedTo    string       `json:"emailed_to" gorm:"size:255"`
}
