package types

import "strings"

// SectionType tags a resume section for rendering.
type SectionType string

const (
	// SectionHeading is a section title such as "Experience".
	SectionHeading SectionType = "heading"
	// SectionContent is body text, possibly spanning several lines.
	SectionContent SectionType = "content"
)

// ParseSectionType maps a model-provided type to a known SectionType.
// Anything that is not a heading is rendered as content.
func ParseSectionType(s string) SectionType {
	if strings.EqualFold(strings.TrimSpace(s), string(SectionHeading)) {
		return SectionHeading
	}
	return SectionContent
}

// Section is one ordered block of the optimized resume.
type Section struct {
	Type    SectionType `json:"type"`
	Content string      `json:"content"`
}

// OptimizedResume is the result of one optimization request.
// Sections are in display order.
type OptimizedResume struct {
	Sections       []Section `json:"sections"`
	ATSScore       int       `json:"atsScore"`
	Summary        []string  `json:"summary"`
	KeywordMatches []string  `json:"keywordMatches"`
	Improvements   []string  `json:"improvements"`
}

// PlainText joins every section's content with a blank line between sections.
// This is the text used for TXT downloads and clipboard copies.
func (r *OptimizedResume) PlainText() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Sections))
	for _, s := range r.Sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Normalize replaces nil slices with empty ones so JSON output always carries arrays.
func (r *OptimizedResume) Normalize() {
	if r.Sections == nil {
		r.Sections = []Section{}
	}
	if r.Summary == nil {
		r.Summary = []string{}
	}
	if r.KeywordMatches == nil {
		r.KeywordMatches = []string{}
	}
	if r.Improvements == nil {
		r.Improvements = []string{}
	}
}

// ScoreLabel returns the human-readable band for an ATS score.
func ScoreLabel(score int) string {
	switch {
	case score >= 85:
		return "Excellent Match"
	case score >= 70:
		return "Good Match"
	case score >= 50:
		return "Fair Match"
	default:
		return "Needs Work"
	}
}
