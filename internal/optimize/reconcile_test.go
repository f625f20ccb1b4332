package optimize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-resume-builder/internal/types"
)

func TestParse_FullReply(t *testing.T) {
	raw := `{
		"sections": [
			{"type": "heading", "content": "Experience"},
			{"type": "content", "content": "• Led **Go** migration"}
		],
		"atsScore": 88,
		"summary": ["Added keywords"],
		"keywordMatches": ["Go", "Kubernetes"],
		"improvements": ["Quantified results"]
	}`

	resume, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Section{
		{Type: types.SectionHeading, Content: "Experience"},
		{Type: types.SectionContent, Content: "• Led **Go** migration"},
	}, resume.Sections)
	assert.Equal(t, 88, resume.ATSScore)
	assert.Equal(t, []string{"Added keywords"}, resume.Summary)
	assert.Equal(t, []string{"Go", "Kubernetes"}, resume.KeywordMatches)
	assert.Equal(t, []string{"Quantified results"}, resume.Improvements)
}

func TestParse_ProseAndFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "json fence", raw: "```json\n{\"sections\":[{\"type\":\"content\",\"content\":\"x\"}]}\n```"},
		{name: "plain fence", raw: "```\n{\"sections\":[{\"type\":\"content\",\"content\":\"x\"}]}\n```"},
		{name: "prose around object", raw: "Here is your resume:\n{\"sections\":[{\"type\":\"content\",\"content\":\"x\"}]}\nGood luck!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Len(t, resume.Sections, 1)
			assert.Equal(t, "x", resume.Sections[0].Content)
		})
	}
}

func TestParse_AppliesDefaults(t *testing.T) {
	resume, err := Parse(`{"sections":[{"type":"heading","content":"Skills"}]}`)
	require.NoError(t, err)
	assert.Equal(t, DefaultATSScore, resume.ATSScore)
	assert.Equal(t, DefaultSummary, resume.Summary)
	assert.NotNil(t, resume.KeywordMatches)
	assert.Empty(t, resume.KeywordMatches)
	assert.NotNil(t, resume.Improvements)
	assert.Empty(t, resume.Improvements)
}

func TestParse_RepairsTrailingCommas(t *testing.T) {
	resume, err := Parse(`{"sections":[{"type":"content","content":"x"},],"atsScore":90,}`)
	require.NoError(t, err)
	assert.Equal(t, 90, resume.ATSScore)
	require.Len(t, resume.Sections, 1)
}

func TestParse_Score(t *testing.T) {
	tests := []struct {
		name  string
		score string
		want  int
	}{
		{name: "integer", score: `77`, want: 77},
		{name: "fraction rounds", score: `85.6`, want: 86},
		{name: "numeric string", score: `"92"`, want: 92},
		{name: "percent string", score: `"88%"`, want: 88},
		{name: "above range", score: `150`, want: 100},
		{name: "below range", score: `-5`, want: 0},
		{name: "zero uses default", score: `0`, want: DefaultATSScore},
		{name: "null uses default", score: `null`, want: DefaultATSScore},
		{name: "text uses default", score: `"high"`, want: DefaultATSScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fmt.Sprintf(`{"sections":[{"type":"content","content":"x"}],"atsScore":%s}`, tt.score)
			resume, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resume.ATSScore)
			assert.GreaterOrEqual(t, resume.ATSScore, 0)
			assert.LessOrEqual(t, resume.ATSScore, 100)
		})
	}
}

func TestParse_LenientFields(t *testing.T) {
	raw := `{
		"sections": [
			{"type": "HEADING", "content": "Summary"},
			{"type": "bullet", "content": "Built things"},
			{"content": "No type"},
			{"type": "content"},
			{}
		],
		"summary": "Single change",
		"keywordMatches": ["Go", "", "  "]
	}`

	resume, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []types.Section{
		{Type: types.SectionHeading, Content: "Summary"},
		{Type: types.SectionContent, Content: "Built things"},
		{Type: types.SectionContent, Content: "No type"},
		{Type: types.SectionContent, Content: ""},
	}, resume.Sections)
	assert.Equal(t, []string{"Single change"}, resume.Summary)
	assert.Equal(t, []string{"Go"}, resume.KeywordMatches)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "no json", raw: "I could not optimize this resume.", wantErr: ErrNoJSON},
		{name: "empty", raw: "", wantErr: ErrNoJSON},
		{name: "missing sections", raw: `{"atsScore": 90}`, wantErr: ErrNoSections},
		{name: "sections not array", raw: `{"sections": "Experience"}`, wantErr: ErrNoSections},
		{name: "only empty sections", raw: `{"sections": [{}, {}]}`, wantErr: ErrNoSections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := Parse(tt.raw)
			assert.Nil(t, resume)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_EmptySectionsKept(t *testing.T) {
	resume, fallback, err := Reconcile(`{"sections": [], "atsScore": 64, "summary": ["Nothing to change"]}`)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.NotNil(t, resume.Sections)
	assert.Empty(t, resume.Sections)
	assert.Equal(t, 64, resume.ATSScore)
	assert.Equal(t, []string{"Nothing to change"}, resume.Summary)
}

func TestReconcile_FallbackKeepsRawReply(t *testing.T) {
	raw := "Sorry, here is the optimized resume as text.\nJane Doe\nGo Engineer"

	resume, fallback, err := Reconcile(raw)
	require.Error(t, err)
	assert.True(t, fallback)
	assert.Equal(t, []types.Section{{Type: types.SectionContent, Content: raw}}, resume.Sections)
	assert.Equal(t, 75, resume.ATSScore)
	assert.Equal(t, []string{"AI optimization applied", "Keywords integrated", "Format maintained"}, resume.Summary)
	assert.Equal(t, []string{}, resume.KeywordMatches)
	assert.Equal(t, []string{"Applied AI optimization", "Maintained original format"}, resume.Improvements)
}

func TestReconcile_Success(t *testing.T) {
	resume, fallback, err := Reconcile(`{"sections":[{"type":"content","content":"x"}],"atsScore":91}`)
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, 91, resume.ATSScore)
}

func TestFallback_DoesNotShareDefaults(t *testing.T) {
	first := Fallback("a")
	first.Summary[0] = "changed"
	first.Improvements[0] = "changed"

	second := Fallback("b")
	assert.Equal(t, "AI optimization applied", second.Summary[0])
	assert.Equal(t, "Applied AI optimization", second.Improvements[0])
}
