package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText_JoinsAllSectionsInOrder(t *testing.T) {
	r := &OptimizedResume{
		Sections: []Section{
			{Type: SectionHeading, Content: "Experience"},
			{Type: SectionContent, Content: "• Built things\n• Shipped things"},
			{Type: SectionHeading, Content: "Skills"},
			{Type: SectionContent, Content: ""},
			{Type: SectionContent, Content: "Go, SQL"},
		},
	}

	assert.Equal(t, "Experience\n\n• Built things\n• Shipped things\n\nSkills\n\n\n\nGo, SQL", r.PlainText())
}

func TestPlainText_Nil(t *testing.T) {
	var r *OptimizedResume
	assert.Equal(t, "", r.PlainText())
}

func TestNormalize_EmptySlicesMarshalAsArrays(t *testing.T) {
	r := &OptimizedResume{ATSScore: 80}
	r.Normalize()

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":[],"atsScore":80,"summary":[],"keywordMatches":[],"improvements":[]}`, string(data))
}

func TestParseSectionType(t *testing.T) {
	tests := []struct {
		input    string
		expected SectionType
	}{
		{"heading", SectionHeading},
		{" Heading ", SectionHeading},
		{"content", SectionContent},
		{"bullet", SectionContent},
		{"", SectionContent},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSectionType(tt.input))
		})
	}
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Excellent Match", ScoreLabel(92))
	assert.Equal(t, "Good Match", ScoreLabel(75))
	assert.Equal(t, "Fair Match", ScoreLabel(50))
	assert.Equal(t, "Needs Work", ScoreLabel(10))
}
