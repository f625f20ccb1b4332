package optimize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/jonathan/ats-resume-builder/internal/llm"
	"github.com/jonathan/ats-resume-builder/internal/schemas"
	"github.com/jonathan/ats-resume-builder/internal/types"
)

// Defaults applied when the model omits a field.
const (
	DefaultATSScore = 75
	minATSScore     = 0
	maxATSScore     = 100
)

// DefaultSummary is used when a parsed reply has no summary.
var DefaultSummary = []string{"AI optimization applied"}

// Fallback summary and improvements when the reply cannot be parsed at all.
var (
	FallbackSummary      = []string{"AI optimization applied", "Keywords integrated", "Format maintained"}
	FallbackImprovements = []string{"Applied AI optimization", "Maintained original format"}
)

// Reconcile turns a model reply into an OptimizedResume. When the reply cannot be
// parsed, the raw text is wrapped by Fallback; fallback reports that case and err
// carries the reason. The returned resume and its Sections slice are never nil.
func Reconcile(raw string) (resume *types.OptimizedResume, fallback bool, err error) {
	resume, err = Parse(raw)
	if err != nil {
		return Fallback(raw), true, err
	}
	return resume, false, nil
}

// Parse extracts the JSON object embedded in a model reply, repairing it when
// needed, and fills in defaults for missing fields.
func Parse(raw string) (*types.OptimizedResume, error) {
	doc := llm.ExtractJSONObject(raw)
	if doc == "" {
		return nil, ErrNoJSON
	}

	doc, err := decodeDocument(doc)
	if err != nil {
		return nil, err
	}

	if err := schemas.ValidateOptimizedResume(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSections, err)
	}

	// An empty sections array is kept as given; entries that all lack type
	// and content are not a usable reply.
	value := gjson.Get(doc, "sections")
	sections := readSections(value)
	if len(sections) == 0 && len(value.Array()) > 0 {
		return nil, ErrNoSections
	}

	resume := &types.OptimizedResume{
		Sections:       sections,
		ATSScore:       readScore(gjson.Get(doc, "atsScore")),
		Summary:        readStrings(gjson.Get(doc, "summary")),
		KeywordMatches: readStrings(gjson.Get(doc, "keywordMatches")),
		Improvements:   readStrings(gjson.Get(doc, "improvements")),
	}
	if len(resume.Summary) == 0 {
		resume.Summary = append([]string(nil), DefaultSummary...)
	}
	resume.Normalize()
	return resume, nil
}

// Fallback wraps the raw reply in a single content section so callers always
// have something to display.
func Fallback(raw string) *types.OptimizedResume {
	return &types.OptimizedResume{
		Sections: []types.Section{
			{Type: types.SectionContent, Content: raw},
		},
		ATSScore:       DefaultATSScore,
		Summary:        append([]string(nil), FallbackSummary...),
		KeywordMatches: []string{},
		Improvements:   append([]string(nil), FallbackImprovements...),
	}
}

// decodeDocument returns doc when it is valid JSON, otherwise a repaired copy.
func decodeDocument(doc string) (string, error) {
	var decoded any
	if err := jsoniter.UnmarshalFromString(doc, &decoded); err == nil {
		return doc, nil
	}

	repaired, err := jsonrepair.JSONRepair(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := jsoniter.UnmarshalFromString(repaired, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return repaired, nil
}

func readSections(value gjson.Result) []types.Section {
	var sections []types.Section
	for _, item := range value.Array() {
		typ := item.Get("type")
		content := item.Get("content")
		if !typ.Exists() && !content.Exists() {
			continue
		}
		sections = append(sections, types.Section{
			Type:    types.ParseSectionType(typ.String()),
			Content: content.String(),
		})
	}
	return sections
}

// readScore accepts numbers and numeric strings ("85", "85%"), rounds and clamps
// to 0..100. Missing, unparseable or zero scores become DefaultATSScore.
func readScore(value gjson.Result) int {
	var score float64
	switch value.Type {
	case gjson.Number:
		score = value.Float()
	case gjson.String:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value.Str), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return DefaultATSScore
		}
		score = parsed
	default:
		return DefaultATSScore
	}

	if math.IsNaN(score) || score == 0 {
		return DefaultATSScore
	}
	rounded := int(math.Round(score))
	return max(minATSScore, min(maxATSScore, rounded))
}

// readStrings accepts an array of strings or a single string.
func readStrings(value gjson.Result) []string {
	if value.Type == gjson.String {
		if s := strings.TrimSpace(value.Str); s != "" {
			return []string{s}
		}
		return []string{}
	}

	out := []string{}
	for _, item := range value.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
