package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/talent-screener/internal/models"
)

const (
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
)

var ErrUnreadableDocument = errors.New("document could not be read")

// TextExtractor fills Document.Text from the raw upload bytes.
type TextExtractor interface {
	Prepare(doc *models.Document) error
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// Prepare implements TextExtractor. PDFs without a text layer keep an empty Text
// and are sent to the model as inline bytes instead.
func (e *textExtractor) Prepare(doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: missing document", ErrUnreadableDocument)
	}
	if doc.HasText() {
		return nil
	}
	if len(doc.Data) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrUnreadableDocument, doc.Name)
	}

	switch baseMimeType(doc.MimeType) {
	case MimePDF:
		text, err := extractPDF(doc.Data)
		if err == nil {
			doc.Text = CleanText(text)
		}
		return nil
	case MimeDOCX:
		text, err := extractDOCX(doc.Data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreadableDocument, doc.Name, err)
		}
		doc.Text = CleanText(text)
	case MimeText, MimeMarkdown:
		if !utf8.Valid(doc.Data) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrUnreadableDocument, doc.Name)
		}
		doc.Text = CleanText(string(doc.Data))
	default:
		return fmt.Errorf("%w: unsupported mime type %s", ErrUnreadableDocument, doc.MimeType)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: no text content found in %s", ErrUnreadableDocument, doc.Name)
	}

	return nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text = textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				buf.WriteString("\n")
			}
		}
	}

	return buf.String(), nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}

func baseMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}

// mimeTypeForExt is the fallback when content sniffing is inconclusive.
func mimeTypeForExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".md":
		return MimeMarkdown
	default:
		return MimeText
	}
}
