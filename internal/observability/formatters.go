// Package observability provides formatted result output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/jonathan/ats-resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output.
type Printer struct {
	out     io.Writer
	noColor bool
}

// NewPrinter creates a new Printer that writes to the given writer. Color is
// used only when the process writes to a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, noColor: color.NoColor}
}

// WithColor forces color on or off.
func (p *Printer) WithColor(enabled bool) *Printer {
	p.noColor = !enabled
	return p
}

func (p *Printer) paint(s string, attrs ...color.Attribute) string {
	if p.noColor {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(p.paint(title, color.Bold), title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads display to width using the visible length of plain.
func pad(display, plain string, width int) string {
	if n := utf8.RuneCountInString(plain); n < width {
		return display + strings.Repeat(" ", width-n)
	}
	return display
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func (p *Printer) scoreColor(score int) color.Attribute {
	switch {
	case score >= 80:
		return color.FgGreen
	case score >= 60:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// PrintResult outputs the score, summary, keyword matches and improvements of an optimization.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(resume *types.OptimizedResume, model string, elapsed time.Duration, fallback bool) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Model:     %s\n", model)
	fmt.Fprintf(&sb, "Duration:  %s\n", elapsed.Round(100*time.Millisecond))
	fmt.Fprintf(&sb, "Sections:  %d\n", len(resume.Sections))
	if fallback {
		sb.WriteString("Note:      reply was not valid JSON, raw text kept\n")
	}
	writeList(&sb, "Summary", resume.Summary)
	writeList(&sb, "Improvements", resume.Improvements)
	if len(resume.KeywordMatches) > 0 {
		sb.WriteString("\nKeywords:\n")
		writeWrapped(&sb, resume.KeywordMatches, boxWidth-6)
	}

	score := fmt.Sprintf("ATS score: %d%% (%s)", resume.ATSScore, types.ScoreLabel(resume.ATSScore))
	fmt.Fprintln(p.out, p.paint(score, p.scoreColor(resume.ATSScore), color.Bold))
	p.printBox("OPTIMIZATION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > maxItemsToShow {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-maxItemsToShow)
	}
}

// writeWrapped writes comma-separated words on lines of at most width runes.
func writeWrapped(sb *strings.Builder, words []string, width int) {
	line := ""
	for i, word := range words {
		if i < len(words)-1 {
			word += ","
		}
		if line != "" && utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) > width {
			fmt.Fprintf(sb, "  %s\n", line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		fmt.Fprintf(sb, "  %s\n", line)
	}
}

// PrintExtraction outputs a short description of an extracted document.
func (p *Printer) PrintExtraction(fileName, format string, text string) {
	preview := strings.SplitN(text, "\n", maxItemsToShow+1)
	if len(preview) > maxItemsToShow {
		preview = append(preview[:maxItemsToShow], "...")
	}
	content := fmt.Sprintf("File:    %s\nFormat:  %s\nChars:   %d\n\n%s",
		fileName, format, utf8.RuneCountInString(text), strings.Join(preview, "\n"))
	p.printBox("EXTRACTED RESUME", content)
}

// PrintSaved reports a written output file.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSaved(path string, size int) {
	fmt.Fprintf(p.out, "%s %s (%d bytes)\n", p.paint("Saved", color.FgGreen, color.Bold), path, size)
}
