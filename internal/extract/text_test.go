package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	result := CleanText("# Title\n  ## Subtitle\nContent here")

	assert.Contains(t, result, "# Title")
	assert.Contains(t, result, "\n## Subtitle")
	assert.Contains(t, result, "Content here")
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	result := CleanText("- Item 1\n  - Nested  item\n• Led   migration")

	assert.Contains(t, result, "- Item 1")
	assert.Contains(t, result, "  - Nested  item")
	assert.Contains(t, result, "• Led   migration")
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with \t multiple    spaces   ")
	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_NonBreakingSpaces(t *testing.T) {
	assert.Equal(t, "Jane Doe", CleanText("Jane\u00a0Doe"))
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	assert.Equal(t, "Line 1\n\nLine 2", CleanText("Line 1\n\n\n\n\nLine 2"))
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", CleanText("Line 1\r\nLine 2\rLine 3\nLine 4"))
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	result := CleanText("Test with émojis 🚀 and spéciàl chàracters")

	assert.Contains(t, result, "émojis")
	assert.Contains(t, result, "🚀")
	assert.Contains(t, result, "spéciàl chàracters")
}

func TestCleanText_PreserveIndentation(t *testing.T) {
	result := CleanText("Header\n    Indented   line\n  Less indented")
	assert.Equal(t, "Header\n    Indented line\n  Less indented", result)
}
