package llm

import (
	"regexp"
	"strings"
)

// fencedBlock captures the body of the first markdown code fence, with or
// without a language tag.
var fencedBlock = regexp.MustCompile("(?s)```[\\w-]*[ \\t]*\\n?(.*?)```")

// ExtractJSONObject returns the JSON object embedded in a model reply, or ""
// when there is none. When the reply has a code fence holding an object, only
// the fence body is searched. The result spans from the first '{' to the last
// '}', so surrounding prose is dropped.
func ExtractJSONObject(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil && strings.Contains(m[1], "{") {
		text = m[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
