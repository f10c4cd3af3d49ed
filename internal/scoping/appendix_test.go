// internal/scoping/appendix_test.go
package scoping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeApplicableAppendices(t *testing.T) {
	tests := []struct {
		name          string
		activities    []string
		vendors       string
		international bool
		expected      []Appendix
	}{
		{
			name:       "logical sanitization and testing",
			activities: []string{ActivityDataSanitizationLogical, ActivityTesting},
			vendors:    "0",
			expected:   []Appendix{AppendixB, AppendixC},
		},
		{
			name:     "vendors alone trigger appendix A",
			vendors:  "5",
			expected: []Appendix{AppendixA},
		},
		{
			name:          "international shipments alone trigger appendix A",
			vendors:       "0",
			international: true,
			expected:      []Appendix{AppendixA},
		},
		{
			name:       "physical destruction does not trigger appendix B",
			activities: []string{ActivityDataDestructionPhysical},
			vendors:    "0",
			expected:   []Appendix{},
		},
		{
			name:       "every appendix at once",
			activities: []string{
				ActivityDataSanitizationLogical,
				ActivityRepair,
				ActivityMedicalEquipment,
				ActivityRecycling,
				ActivityBrokering,
				ActivitySolarPanels,
			},
			vendors:  "3",
			expected: []Appendix{AppendixA, AppendixB, AppendixC, AppendixD, AppendixE, AppendixF, AppendixG},
		},
		{
			name:       "refurbishment triggers C",
			activities: []string{ActivityRefurbishment},
			vendors:    "",
			expected:   []Appendix{AppendixC},
		},
		{
			name:       "trading triggers F",
			activities: []string{ActivityTrading},
			vendors:    "0",
			expected:   []Appendix{AppendixF},
		},
		{
			name:     "blank vendors count as zero",
			vendors:  "  ",
			expected: []Appendix{},
		},
		{
			name:     "unparseable vendors count as zero",
			vendors:  "many",
			expected: []Appendix{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeApplicableAppendices(tt.activities, tt.vendors, tt.international)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeApplicableAppendicesIsPure(t *testing.T) {
	activities := []string{ActivityTesting, ActivityRecycling}

	first := ComputeApplicableAppendices(activities, "2", true)
	second := ComputeApplicableAppendices(activities, "2", true)

	assert.Equal(t, first, second)
}

func TestVendorCountPresent(t *testing.T) {
	assert.True(t, VendorCountPresent("0"))
	assert.True(t, VendorCountPresent("12"))
	assert.False(t, VendorCountPresent(""))
	assert.False(t, VendorCountPresent("   "))
}
