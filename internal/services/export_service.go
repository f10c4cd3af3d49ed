// internal/services/export_service.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/r2certify/r2v3-backend/internal/config"
	"github.com/r2certify/r2v3-backend/internal/models"
	"github.com/r2certify/r2v3-backend/internal/utils"
)

// presigned download links stay valid for a day
const exportURLTTL = 24 * time.Hour

type ExportService struct {
	db            *gorm.DB
	cfg           *config.Config
	assessments   *AssessmentService
	storage       *StorageService
	notifications *NotificationService
}

type ExportRequest struct {
	EmailTo string `json:"email_to" validate:"omitempty,email"`
}

type ExportResult struct {
	Record      *models.ExportRecord `json:"record"`
	DownloadURL string               `json:"download_url"`
	EmailedTo   string               `json:"emailed_to,omitempty"`
}

func NewExportService(db *gorm.DB, cfg *config.Config, assessments *AssessmentService, storage *StorageService, notifications *NotificationService) *ExportService {
	return &ExportService{
		db:            db,
		cfg:           cfg,
		assessments:   assessments,
		storage:       storage,
		notifications: notifications,
	}
}

// Generate renders the coverage report in the requested format, stores the
// artifact, and returns a time-limited download link. The email format
// renders the document and mails the link instead of returning it inline.
func (s *ExportService) Generate(tenantID, assessmentID uuid.UUID, format models.ExportFormat, req *ExportRequest) (*ExportResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	report, err := s.assessments.Coverage(tenantID, assessmentID)
	if err != nil {
		return nil, err
	}

	var (
		content     []byte
		contentType string
		extension   string
	)

	switch format {
	case models.ExportFormatExcel:
		content, err = renderCoverageCSV(report)
		contentType = "text/csv"
		extension = "csv"
	case models.ExportFormatWord:
		content, err = renderCoverageHTML(report)
		contentType = "application/msword"
		extension = "doc"
	case models.ExportFormatPDF, models.ExportFormatEmail:
		content, err = renderCoverageHTML(report)
		contentType = "text/html"
		extension = "html"
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s_%s.%s",
		tenantID, assessmentID, time.Now().Format("20060102150405"), extension)

	upload, err := s.storage.PutBytes(content, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	downloadURL, err := s.storage.GeneratePresignedURL(key, exportURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create download link: %w", err)
	}

	record := &models.ExportRecord{
		AssessmentID: assessmentID,
		TenantID:     tenantID,
		Format:       format,
		StorageKey:   upload.Key,
		URL:          downloadURL,
		ContentHash:  utils.HashBytes(content),
	}

	result := &ExportResult{Record: record, DownloadURL: downloadURL}

	if format == models.ExportFormatEmail {
		if req.EmailTo == "" {
			return nil, fmt.Errorf("email_to is required for email exports")
		}
		if err := s.notifications.SendExportEmail(req.EmailTo, downloadURL, format); err != nil {
			return nil, fmt.Errorf("failed to email export: %w", err)
		}
		record.EmailedTo = req.EmailTo
		result.EmailedTo = req.EmailTo
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to record export: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id":     tenantID,
		"assessment_id": assessmentID,
		"format":        format,
		"key":           upload.Key,
	}).Info("Export generated")

	return result, nil
}

// History lists past exports for an assessment.
func (s *ExportService) History(tenantID, assessmentID uuid.UUID) ([]models.ExportRecord, error) {
	var records []models.ExportRecord
	err := s.db.Where("assessment_id = ? AND tenant_id = ?", assessmentID, tenantID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load export history: %w", err)
	}
	return records, nil
}

// renderCoverageCSV mirrors the coverage table layout of the assessment
// report: one row per requirement with its mapped question codes.
func renderCoverageCSV(report *CoverageReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Requirement", "Covered", "Count", "Answered", "QuestionIDs"}); err != nil {
		return nil, err
	}
	for _, rc := range report.Requirements {
		covered := "N"
		if rc.Covered {
			covered = "Y"
		}
		row := []string{
			rc.Requirement,
			covered,
			strconv.Itoa(rc.QuestionCount),
			strconv.Itoa(rc.AnsweredCount),
			strings.Join(rc.QuestionCodes, ";"),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var coverageTemplate = template.Must(template.New("coverage").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>R2v3 Assessment Coverage Report</title>
	<style>
		body { font-family: Arial, sans-serif; margin: 2em; }
		table { border-collapse: collapse; width: 100%; }
		th, td { border: 1px solid #999; padding: 6px 10px; text-align: left; }
		th { background: #f0f0f0; }
		.missing { color: #b00020; }
	</style>
</head>
<body>
	<h1>R2v3 Assessment Coverage Report</h1>
	<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
	<p>Progress: {{.Assessment.AnsweredCount}} of {{.Assessment.TotalQuestions}} questions answered, {{.Assessment.EvidenceCount}} with evidence.</p>
	<table>
		<tr><th>Requirement</th><th>Covered</th><th>Questions</th><th>Answered</th><th>Question IDs</th></tr>
		{{range .Requirements}}
		<tr>
			<td>{{.Requirement}}</td>
			<td>{{if .Covered}}Y{{else}}N{{end}}</td>
			<td>{{.QuestionCount}}</td>
			<td>{{.AnsweredCount}}</td>
			<td>{{range $i, $c := .QuestionCodes}}{{if $i}}; {{end}}{{$c}}{{end}}</td>
		</tr>
		{{end}}
	</table>
	{{if .MissingEvidence}}
	<h2 class="missing">Missing Evidence</h2>
	<p>The following answered questions require evidence that has not been attached:</p>
	<ul>
		{{range .MissingEvidence}}<li>{{.}}</li>{{end}}
	</ul>
	{{end}}
</body>
</html>`))

func renderCoverageHTML(report *CoverageReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := coverageTemplate.Execute(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
