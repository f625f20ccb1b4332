package extract

import (
	"regexp"
	"strings"
)

var (
	multiSpace        = regexp.MustCompile(`\s+`)
	excessBlankLines  = regexp.MustCompile(`\n\n\n+`)
	bulletPrefixes    = []string{"- ", "* ", "• ", "· "}
	nonBreakingSpaces = strings.NewReplacer("\u00a0", " ", "\u2007", " ", "\u202f", " ")
)

// CleanText normalizes extracted text while preserving structure: line endings
// become LF, runs of spaces collapse, trailing whitespace is dropped and at most
// one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = nonBreakingSpaces.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line, keeping headings, bullets and leading indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := ""
	if n := len(line) - len(trimmed); n > 0 {
		indent = strings.Repeat(" ", n)
	}
	if isBulletLine(trimmed) {
		return indent + trimmed
	}
	return indent + multiSpace.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
