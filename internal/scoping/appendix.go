// internal/scoping/appendix.go
package scoping

import (
	"sort"
	"strconv"
	"strings"
)

// Appendix is an R2v3 standard annex whose applicability is derived from the
// declared processing activities and downstream vendor relationships.
type Appendix string

const (
	AppendixA Appendix = "A" // Downstream Recycling Chain
	AppendixB Appendix = "B" // Data Sanitization
	AppendixC Appendix = "C" // Test and Repair
	AppendixD Appendix = "D" // Specialty Electronics Reuse
	AppendixE Appendix = "E" // Materials Recovery
	AppendixF Appendix = "F" // Brokering
	AppendixG Appendix = "G" // Photovoltaic Modules
)

// Processing activity names as they appear on the intake form. Appendix B is
// deliberately keyed to logical sanitization only; physical destruction does
// not trigger it.
const (
	ActivityDataSanitizationLogical = "Data Sanitization (Logical)"
	ActivityDataDestructionPhysical = "Data Destruction (Physical)"
	ActivityTesting                 = "Testing"
	ActivityRepair                  = "Repair"
	ActivityRefurbishment           = "Refurbishment"
	ActivitySpecialtyElectronics    = "Specialty Electronics"
	ActivityMedicalEquipment        = "Medical Equipment"
	ActivityIndustrialEquipment     = "Industrial Equipment"
	ActivityMaterialsRecovery       = "Materials Recovery"
	ActivityRecycling               = "Recycling"
	ActivityBrokering               = "Brokering"
	ActivityTrading                 = "Trading"
	ActivitySolarPanels             = "Solar Panels/PV Modules"
)

var appendixTriggers = map[Appendix][]string{
	AppendixB: {ActivityDataSanitizationLogical},
	AppendixC: {ActivityTesting, ActivityRepair, ActivityRefurbishment},
	AppendixD: {ActivitySpecialtyElectronics, ActivityMedicalEquipment, ActivityIndustrialEquipment},
	AppendixE: {ActivityMaterialsRecovery, ActivityRecycling},
	AppendixF: {ActivityBrokering, ActivityTrading},
	AppendixG: {ActivitySolarPanels},
}

// ComputeApplicableAppendices derives the appendix set from the three scoping
// inputs. The rules are independently additive; identical inputs always yield
// the identical, sorted set. totalDownstreamVendors is the raw form value, so
// "0" is a present-but-zero answer and unparseable values count as zero.
func ComputeApplicableAppendices(activities []string, totalDownstreamVendors string, internationalShipments bool) []Appendix {
	set := make(map[Appendix]bool)

	if VendorCount(totalDownstreamVendors) > 0 || internationalShipments {
		set[AppendixA] = true
	}

	have := make(map[string]bool, len(activities))
	for _, a := range activities {
		have[strings.TrimSpace(a)] = true
	}

	for appendix, triggers := range appendixTriggers {
		for _, t := range triggers {
			if have[t] {
				set[appendix] = true
				break
			}
		}
	}

	result := make([]Appendix, 0, len(set))
	for a := range set {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// VendorCount parses the raw downstream-vendor answer. Blank or unparseable
// answers count as zero.
func VendorCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// VendorCountPresent reports whether the answer was given at all; "0" is a
// valid, present answer.
func VendorCountPresent(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

// Strings converts an appendix slice to its string form for storage.
func Strings(appendices []Appendix) []string {
	out := make([]string, len(appendices))
	for i, a := range appendices {
		out[i] = string(a)
	}
	return out
}
