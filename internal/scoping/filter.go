// internal/scoping/filter.go
package scoping

import "strings"

var coreRequirements = map[string]bool{
	"CR1": true, "CR2": true, "CR3": true, "CR4": true, "CR5": true,
	"CR6": true, "CR7": true, "CR8": true, "CR9": true, "CR10": true,
}

// IsCoreRequirement reports whether a tag names one of CR1..CR10.
func IsCoreRequirement(tag string) bool {
	return coreRequirements[normalizeTag(tag)]
}

// IsAppendixTag reports whether a tag names one of the appendices A..G.
func IsAppendixTag(tag string) bool {
	t := normalizeTag(tag)
	return len(t) == 1 && t >= "A" && t <= "G"
}

// InScope decides whether a question belongs to an assessment. Questions
// carrying only core-requirement tags always apply. Questions carrying any
// appendix tag are appendix questions: they apply only when one of their
// appendix tags is in the applicable set, regardless of any CR tags they
// also carry for coverage mapping.
func InScope(tags []string, applicable []string) bool {
	appSet := make(map[string]bool, len(applicable))
	for _, a := range applicable {
		appSet[normalizeTag(a)] = true
	}

	hasAppendixTag := false
	for _, tag := range tags {
		t := normalizeTag(tag)
		if IsAppendixTag(t) {
			hasAppendixTag = true
			if appSet[t] {
				return true
			}
		}
	}
	return !hasAppendixTag
}

func normalizeTag(tag string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(tag), " ", ""))
}
