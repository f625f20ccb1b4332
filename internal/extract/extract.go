// Package extract converts uploaded resume documents (PDF, DOCX, plain text) to text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxUploadSize is the largest document accepted, in bytes.
const MaxUploadSize = 10 << 20

// Format is a supported source document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// MIME types recognized for each format.
const (
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEMSWord   = "application/msword"
)

// Document is the text extracted from an uploaded file.
type Document struct {
	FileName string
	Format   Format
	Text     string
}

var (
	// ErrEmptyDocument is returned when a document contains no extractable text.
	ErrEmptyDocument = errors.New("no text could be extracted from the document")
	// ErrTooLarge is returned for documents over MaxUploadSize.
	ErrTooLarge = fmt.Errorf("document exceeds %d MB limit", MaxUploadSize>>20)
)

// UnsupportedFormatError indicates the document type cannot be converted.
type UnsupportedFormatError struct {
	FileName string
	Detected string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Detected != "" {
		return fmt.Sprintf("unsupported file format for %q (%s): upload a PDF, DOCX or TXT file", e.FileName, e.Detected)
	}
	return fmt.Sprintf("unsupported file format for %q: upload a PDF, DOCX or TXT file", e.FileName)
}

// ExtractionError indicates a supported document could not be parsed.
type ExtractionError struct {
	Format Format
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to read %s document: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Text extracts and cleans the text of a document. The format is taken from
// contentType when it names a known type, then from the file extension, then
// from sniffing the content.
func Text(fileName, contentType string, data []byte) (*Document, error) {
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	format, err := DetectFormat(fileName, contentType, data)
	if err != nil {
		return nil, err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = pdfText(data)
	case FormatDOCX:
		text, err = docxText(data)
	case FormatText:
		text, err = plainText(data)
	}
	if err != nil {
		return nil, &ExtractionError{Format: format, Cause: err}
	}

	text = CleanText(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	return &Document{FileName: fileName, Format: format, Text: text}, nil
}

// ReadFile extracts the text of a document on disk.
func ReadFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > MaxUploadSize {
		return nil, ErrTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Text(filepath.Base(path), "", data)
}

// DetectFormat resolves the document format. Legacy Word (.doc) files are rejected.
func DetectFormat(fileName, contentType string, data []byte) (Format, error) {
	if format, ok, err := formatFromMIME(fileName, contentType); ok || err != nil {
		return format, err
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".txt", ".text", ".md", ".markdown":
		return FormatText, nil
	case ".doc":
		return "", &UnsupportedFormatError{FileName: fileName, Detected: MIMEMSWord}
	}

	detected := mimetype.Detect(data)
	if format, ok, err := formatFromMIME(fileName, detected.String()); ok || err != nil {
		return format, err
	}
	return "", &UnsupportedFormatError{FileName: fileName, Detected: detected.String()}
}

// formatFromMIME maps a MIME type to a format. ok is false when the type is not
// specific enough to decide.
func formatFromMIME(fileName, contentType string) (Format, bool, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case MIMEPDF:
		return FormatPDF, true, nil
	case MIMEDOCX:
		return FormatDOCX, true, nil
	case MIMEText, MIMEMarkdown:
		return FormatText, true, nil
	case MIMEMSWord:
		return "", false, &UnsupportedFormatError{FileName: fileName, Detected: mediaType}
	}
	return "", false, nil
}

// pdfText returns the text of every page. The pdf reader panics on malformed
// object syntax; that is reported as an error.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxBreak        = regexp.MustCompile(`<w:(br|cr)\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText strips WordprocessingML markup, keeping paragraph and line breaks.
func documentXMLText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxBreak.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content)
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", errors.New("text file is not valid UTF-8")
	}
	return string(data), nil
}
