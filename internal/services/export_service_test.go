// internal/services/export_service_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r2certify/r2v3-backend/internal/models"
)

func sampleCoverageReport() *CoverageReport {
	return &CoverageReport{
		Assessment: &models.Assessment{
			AnsweredCount:  3,
			EvidenceCount:  2,
			TotalQuestions: 10,
		},
		Requirements: []RequirementCoverage{
			{Requirement: "CR1", Covered: true, QuestionCount: 2, AnsweredCount: 1, QuestionCodes: []string{"CR1-01", "CR1-02"}},
			{Requirement: "CR2", Covered: false},
			{Requirement: "B", Covered: true, QuestionCount: 1, AnsweredCount: 1, QuestionCodes: []string{"APPB-01"}},
		},
		MissingEvidence: []string{"CR3-01"},
		GeneratedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderCoverageCSV(t *testing.T) {
	content, err := renderCoverageCSV(sampleCoverageReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Requirement,Covered,Count,Answered,QuestionIDs", lines[0])
	assert.Equal(t, "CR1,Y,2,1,CR1-01;CR1-02", lines[1])
	assert.Equal(t, "CR2,N,0,0,", lines[2])
	assert.Equal(t, "B,Y,1,1,APPB-01", lines[3])
}

func TestRenderCoverageHTML(t *testing.T) {
	content, err := renderCoverageHTML(sampleCoverageReport())
	require.NoError(t, err)

	html := string(content)
	assert.Contains(t, html, "R2v3 Assessment Coverage Report")
	assert.Contains(t, html, "3 of 10 questions answered")
	assert.Contains(t, html, "CR1-01; CR1-02")
	assert.Contains(t, html, "Missing Evidence")
	assert.Contains(t, html, "CR3-01")
}
