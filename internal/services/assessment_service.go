// internal/services/assessment_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/scoping"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrQuestionNotInScope = errors.New("question not in assessment scope")
)

type AssessmentService struct {
	db *gorm.DB
}

func NewAssessmentService(db *gorm.DB) *AssessmentService {
	return &AssessmentService{db: db}
}

type AnswerRequest struct {
	Response    string `json:"response" validate:"required"`
	EvidenceURL string `json:"evidence_url"`
	EvidenceKey string `json:"evidence_key"`
}

// FilteringInfo explains the question scope to the client: how many bank
// questions survived the appendix filter and why.
type FilteringInfo struct {
	ApplicableAppendices []string `json:"applicable_appendices"`
	BankSize             int      `json:"bank_size"`
	InScope              int      `json:"in_scope"`
	ScopeStatement       string   `json:"scope_statement"`
}

type QuestionListResponse struct {
	Questions []models.Question                   `json:"questions"`
	Filtering FilteringInfo                       `json:"filtering"`
	Answers   map[string]*models.AssessmentAnswer `json:"answers"`
}

// RequirementCoverage is one row of the coverage report: how many in-scope
// questions map to a requirement and which ones.
type RequirementCoverage struct {
	Requirement   string   `json:"requirement"`
	Covered       bool     `json:"covered"`
	QuestionCount int      `json:"question_count"`
	QuestionCodes []string `json:"question_codes"`
	AnsweredCount int      `json:"answered_count"`
}

// CoverageReport is the assessment deliverable the exports render.
type CoverageReport struct {
	Assessment      *models.Assessment    `json:"assessment"`
	Requirements    []RequirementCoverage `json:"requirements"`
	MissingEvidence []string              `json:"missing_evidence"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

func (s *AssessmentService) getForTenant(tenantID, assessmentID uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.db.Preload("IntakeForm").
		Where("id = ? AND tenant_id = ?", assessmentID, tenantID).
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &assessment, nil
}

// Get returns the assessment with its progress counters.
func (s *AssessmentService) Get(tenantID, assessmentID uuid.UUID) (*models.Assessment, error) {
	return s.getForTenant(tenantID, assessmentID)
}

// GetCurrent returns the tenant's latest assessment.
func (s *AssessmentService) GetCurrent(tenantID uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.db.Preload("IntakeForm").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &assessment, nil
}

// Questions returns the in-scope question set plus the filtering summary.
// Core-requirement questions always apply; appendix questions only when the
// intake scoping derived their appendix.
func (s *AssessmentService) Questions(tenantID, assessmentID uuid.UUID) (*QuestionListResponse, error) {
	assessment, err := s.getForTenant(tenantID, assessmentID)
	if err != nil {
		return nil, err
	}

	var bank []models.Question
	if err := s.db.Order("sort_order").Find(&bank).Error; err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	applicable := []string(assessment.IntakeForm.ApplicableAppendices)
	inScope := make([]models.Question, 0, len(bank))
	for _, q := range bank {
		if scoping.InScope(q.Requirements, applicable) {
			inScope = append(inScope, q)
		}
	}

	var answers []models.AssessmentAnswer
	if err := s.db.Where("assessment_id = ?", assessmentID).Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	answerByQuestion := make(map[string]*models.AssessmentAnswer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].QuestionID.String()] = &answers[i]
	}

	statement := "All core requirements (CR1-CR10) apply."
	if len(applicable) > 0 {
		statement = fmt.Sprintf("All core requirements (CR1-CR10) apply, plus appendices %s.",
			strings.Join(applicable, ", "))
	}

	return &QuestionListResponse{
		Questions: inScope,
		Answers:   answerByQuestion,
		Filtering: FilteringInfo{
			ApplicableAppendices: applicable,
			BankSize:             len(bank),
			InScope:              len(inScope),
			ScopeStatement:       statement,
		},
	}, nil
}

// Answer records a response. Answers upsert per question, so revising one
// never duplicates. A question that requires evidence counts toward progress
// only once evidence is attached.
func (s *AssessmentService) Answer(tenantID, assessmentID, questionID, userID uuid.UUID, req *AnswerRequest) (*models.AssessmentAnswer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	assessment, err := s.getForTenant(tenantID, assessmentID)
	if err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("question not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !scoping.InScope(question.Requirements, assessment.IntakeForm.ApplicableAppendices) {
		return nil, ErrQuestionNotInScope
	}

	var answer models.AssessmentAnswer
	err = s.db.Where("assessment_id = ? AND question_id = ?", assessmentID, questionID).First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		answer = models.AssessmentAnswer{
			AssessmentID: assessmentID,
			QuestionID:   questionID,
		}
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	answer.Response = req.Response
	answer.EvidenceURL = req.EvidenceURL
	answer.EvidenceKey = req.EvidenceKey
	answer.AnsweredBy = userID

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&answer).Error; err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}
		return s.refreshProgress(tx, assessment)
	})
	if err != nil {
		return nil, err
	}

	return &answer, nil
}

// refreshProgress recomputes the assessment counters from its answers.
func (s *AssessmentService) refreshProgress(tx *gorm.DB, assessment *models.Assessment) error {
	var answers []models.AssessmentAnswer
	if err := tx.Preload("Question").Where("assessment_id = ?", assessment.ID).Find(&answers).Error; err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}

	answered := 0
	withEvidence := 0
	for _, a := range answers {
		hasEvidence := a.EvidenceURL != "" || a.EvidenceKey != ""
		if hasEvidence {
			withEvidence++
		}
		if strings.TrimSpace(a.Response) == "" {
			continue
		}
		if a.Question.EvidenceRequired && !hasEvidence {
			continue
		}
		answered++
	}

	assessment.AnsweredCount = answered
	assessment.EvidenceCount = withEvidence

	switch {
	case assessment.TotalQuestions > 0 && answered >= assessment.TotalQuestions:
		if assessment.Status != models.AssessmentStatusCompleted {
			now := time.Now()
			assessment.Status = models.AssessmentStatusCompleted
			assessment.CompletedAt = &now
			logrus.WithField("assessment_id", assessment.ID).Info("Assessment completed")
		}
	case answered > 0:
		assessment.Status = models.AssessmentStatusInProgress
		assessment.CompletedAt = nil
	}

	return tx.Save(assessment).Error
}

// Coverage builds the requirement coverage report: for each core
// requirement and in-scope appendix, the mapped questions and how many are
// answered, plus the evidence gaps.
func (s *AssessmentService) Coverage(tenantID, assessmentID uuid.UUID) (*CoverageReport, error) {
	assessment, err := s.getForTenant(tenantID, assessmentID)
	if err != nil {
		return nil, err
	}

	listing, err := s.Questions(tenantID, assessmentID)
	if err != nil {
		return nil, err
	}

	requirements := []string{
		"CR1", "CR2", "CR3", "CR4", "CR5", "CR6", "CR7", "CR8", "CR9", "CR10",
	}
	requirements = append(requirements, listing.Filtering.ApplicableAppendices...)

	byReq := make(map[string]*RequirementCoverage, len(requirements))
	ordered := make([]*RequirementCoverage, 0, len(requirements))
	for _, r := range requirements {
		rc := &RequirementCoverage{Requirement: r}
		byReq[r] = rc
		ordered = append(ordered, rc)
	}

	var missingEvidence []string
	for _, q := range listing.Questions {
		answer := listing.Answers[q.ID.String()]
		answeredHere := answer != nil && strings.TrimSpace(answer.Response) != ""
		hasEvidence := answer != nil && (answer.EvidenceURL != "" || answer.EvidenceKey != "")

		if q.EvidenceRequired && answeredHere && !hasEvidence {
			missingEvidence = append(missingEvidence, q.Code)
		}

		for _, tag := range q.Requirements {
			rc, ok := byReq[strings.ToUpper(strings.TrimSpace(tag))]
			if !ok {
				continue
			}
			rc.QuestionCount++
			rc.QuestionCodes = append(rc.QuestionCodes, q.Code)
			rc.Covered = true
			if answeredHere && (!q.EvidenceRequired || hasEvidence) {
				rc.AnsweredCount++
			}
		}
	}

	report := &CoverageReport{
		Assessment:      assessment,
		MissingEvidence: missingEvidence,
		GeneratedAt:     time.Now(),
	}
	for _, rc := range ordered {
		report.Requirements = append(report.Requirements, *rc)
	}
	return report, nil
}
