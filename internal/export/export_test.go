package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nguyenthenguyen/docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-resume-builder/internal/extract"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

func sampleResume() *types.OptimizedResume {
	return &types.OptimizedResume{
		Sections: []types.Section{
			{Type: types.SectionHeading, Content: "Jane Doe"},
			{Type: types.SectionContent, Content: "Senior Go Engineer | Acme & Co | 01/2020 - Present"},
			{Type: types.SectionHeading, Content: "Experience"},
			{Type: types.SectionContent, Content: "• Built <fast> **Go** services\n• Reduced costs by 15%"},
			{Type: types.SectionHeading, Content: "Skills"},
			{Type: types.SectionContent, Content: "Go, Kubernetes, PostgreSQL"},
		},
		ATSScore:       87,
		Summary:        []string{"Added keywords"},
		KeywordMatches: []string{"Go"},
		Improvements:   []string{"Quantified results"},
	}
}

func assertInOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	last := -1
	for _, part := range parts {
		idx := strings.Index(text, part)
		require.GreaterOrEqual(t, idx, 0, "missing %q", part)
		assert.Greater(t, idx, last, "%q out of order", part)
		last = idx
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{in: "docx", want: FormatDOCX},
		{in: "DOCX", want: FormatDOCX},
		{in: ".txt", want: FormatText},
		{in: "text", want: FormatText},
		{in: "json", want: FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "optimized-resume-1700000000123.docx", Filename(FormatDOCX, now))
	assert.Equal(t, "optimized-resume-1700000000123.txt", Filename(FormatText, now))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", FormatText.ContentType())
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Contains(t, FormatDOCX.ContentType(), "wordprocessingml")
}

func TestText_KeepsEverySectionInOrder(t *testing.T) {
	resume := sampleResume()
	out := string(Text(resume))

	assert.Equal(t, resume.PlainText(), out)
	parts := make([]string, 0, len(resume.Sections))
	for _, s := range resume.Sections {
		parts = append(parts, s.Content)
	}
	assert.Equal(t, strings.Join(parts, "\n\n"), out)
}

func TestJSON(t *testing.T) {
	out, err := JSON(&types.OptimizedResume{Sections: []types.Section{{Type: types.SectionContent, Content: "x"}}})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, []any{}, decoded["summary"])
	assert.Equal(t, []any{}, decoded["keywordMatches"])
}

func TestDOCX_ContentInOrder(t *testing.T) {
	out, err := DOCX(sampleResume())
	require.NoError(t, err)

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	defer doc.Close()
	content := doc.Editable().GetContent()

	assert.Contains(t, content, "Built &lt;fast&gt; **Go** services")
	assert.Contains(t, content, "Acme &amp; Co")
	assert.Contains(t, content, `<w:b/><w:sz w:val="32"/>`)
	assertInOrder(t, content, "Jane Doe", "Senior Go Engineer", "Experience", "Reduced costs by 15%", "Skills", "PostgreSQL")
}

func TestDOCX_RoundTripsThroughExtraction(t *testing.T) {
	out, err := DOCX(sampleResume())
	require.NoError(t, err)

	doc, err := extract.Text("resume.docx", "", out)
	require.NoError(t, err)
	assert.Equal(t, extract.FormatDOCX, doc.Format)
	assert.Equal(t,
		"Jane Doe\nSenior Go Engineer | Acme & Co | 01/2020 - Present\nExperience\n"+
			"• Built <fast> **Go** services\n• Reduced costs by 15%\nSkills\nGo, Kubernetes, PostgreSQL",
		doc.Text)
}

func TestDOCX_OneParagraphPerContentLine(t *testing.T) {
	out, err := DOCX(&types.OptimizedResume{Sections: []types.Section{
		{Type: types.SectionContent, Content: "a\nb\nc"},
	}})
	require.NoError(t, err)

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, 3, strings.Count(doc.Editable().GetContent(), "<w:p>"))
}

func TestRender(t *testing.T) {
	resume := sampleResume()

	txt, err := Render(FormatText, resume)
	require.NoError(t, err)
	assert.Equal(t, resume.PlainText(), string(txt))

	_, err = Render(Format("pdf"), resume)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Render(FormatText, nil)
	assert.Error(t, err)
}
