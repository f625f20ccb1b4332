// Package export renders an optimized resume as a downloadable document.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"

	"github.com/jonathan/ats-resume-builder/internal/types"
)

// Format is an export file format.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Font sizes in half-points.
const (
	headingSize = 32
	contentSize = 24
)

//go:embed template.docx
var docxTemplate []byte

// ParseFormat parses a format name such as "docx" or ".TXT".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatText, "text":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q (use docx, txt or json)", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Filename returns optimized-resume-<unix ms>.<ext>.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("optimized-resume-%d.%s", now.UnixMilli(), f)
}

// Render encodes resume in format f.
func Render(f Format, resume *types.OptimizedResume) ([]byte, error) {
	if resume == nil {
		return nil, errors.New("export: resume is nil")
	}
	switch f {
	case FormatDOCX:
		return DOCX(resume)
	case FormatText:
		return Text(resume), nil
	case FormatJSON:
		return JSON(resume)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// Text returns every section's content separated by a blank line.
func Text(resume *types.OptimizedResume) []byte {
	return []byte(resume.PlainText())
}

// JSON returns the resume as indented JSON.
func JSON(resume *types.OptimizedResume) ([]byte, error) {
	normalized := *resume
	normalized.Normalize()
	return json.MarshalIndent(&normalized, "", "  ")
}

// DOCX builds a Word document with one paragraph per heading and per content
// line, in section order. Headings are bold.
func DOCX(resume *types.OptimizedResume) ([]byte, error) {
	template, err := docx.ReadDocxFromMemory(bytes.NewReader(docxTemplate), int64(len(docxTemplate)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx template: %w", err)
	}
	defer template.Close()

	body, err := documentXML(resume)
	if err != nil {
		return nil, err
	}

	doc := template.Editable()
	doc.SetContent(body)

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write docx: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`
	documentFooter = `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`
)

func documentXML(resume *types.OptimizedResume) (string, error) {
	var sb strings.Builder
	sb.WriteString(documentHeader)
	for _, section := range resume.Sections {
		if section.Type == types.SectionHeading {
			if err := writeParagraph(&sb, section.Content, headingSize, true); err != nil {
				return "", err
			}
			continue
		}
		for _, line := range strings.Split(section.Content, "\n") {
			if err := writeParagraph(&sb, line, contentSize, false); err != nil {
				return "", err
			}
		}
	}
	sb.WriteString(documentFooter)
	return sb.String(), nil
}

func writeParagraph(sb *strings.Builder, text string, size int, bold bool) error {
	sb.WriteString("<w:p>")
	if bold {
		sb.WriteString(`<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>`)
	}
	sb.WriteString("<w:r><w:rPr>")
	if bold {
		sb.WriteString("<w:b/>")
	}
	fmt.Fprintf(sb, `<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr><w:t xml:space="preserve">`, size, size)
	if err := xml.EscapeText(sb, []byte(text)); err != nil {
		return fmt.Errorf("failed to escape paragraph text: %w", err)
	}
	sb.WriteString("</w:t></w:r></w:p>")
	return nil
}
