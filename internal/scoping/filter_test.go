// internal/scoping/filter_test.go
package scoping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInScope(t *testing.T) {
	tests := []struct {
		name       string
		tags       []string
		applicable []string
		want       bool
	}{
		{
			name:       "core-only question always applies",
			tags:       []string{"CR7"},
			applicable: nil,
			want:       true,
		},
		{
			name:       "core-only question applies regardless of appendices",
			tags:       []string{"CR1"},
			applicable: []string{"B", "C"},
			want:       true,
		},
		{
			name:       "appendix question applies when appendix in scope",
			tags:       []string{"B"},
			applicable: []string{"A", "B"},
			want:       true,
		},
		{
			name:       "appendix question excluded when appendix out of scope",
			tags:       []string{"G"},
			applicable: []string{"A", "B"},
			want:       false,
		},
		{
			name:       "appendix tag gates even with a core tag present",
			tags:       []string{"A", "CR5"},
			applicable: []string{"B"},
			want:       false,
		},
		{
			name:       "mixed tags apply when the appendix is in scope",
			tags:       []string{"A", "CR5"},
			applicable: []string{"A"},
			want:       true,
		},
		{
			name:       "tag normalization tolerates case and spacing",
			tags:       []string{" b "},
			applicable: []string{"B"},
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InScope(tt.tags, tt.applicable))
		})
	}
}

func TestTagClassification(t *testing.T) {
	assert.True(t, IsCoreRequirement("CR10"))
	assert.True(t, IsCoreRequirement("cr1"))
	assert.False(t, IsCoreRequirement("CR11"))
	assert.True(t, IsAppendixTag("A"))
	assert.True(t, IsAppendixTag("g"))
	assert.False(t, IsAppendixTag("H"))
	assert.False(t, IsAppendixTag("CR2"))
}
