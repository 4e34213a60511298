package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-screener/internal/models"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestPrepareTextDocument(t *testing.T) {
	doc := &models.Document{Name: "cv.txt", MimeType: "text/plain; charset=utf-8", Data: []byte("  Jane Doe \n\n\n Go developer  \n")}

	require.NoError(t, NewTextExtractor().Prepare(doc))
	assert.Equal(t, "Jane Doe\nGo developer", doc.Text)
}

func TestPrepareDocx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>`)
	doc := &models.Document{Name: "cv.docx", MimeType: MimeDOCX, Data: data}

	require.NoError(t, NewTextExtractor().Prepare(doc))
	assert.Equal(t, "Jane Doe\nSenior Go Engineer", doc.Text)
}

func TestPrepareBrokenDocx(t *testing.T) {
	doc := &models.Document{Name: "cv.docx", MimeType: MimeDOCX, Data: []byte("not a zip")}

	err := NewTextExtractor().Prepare(doc)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestPreparePDFWithoutTextLayerFallsBackToInline(t *testing.T) {
	doc := &models.Document{Name: "scan.pdf", MimeType: MimePDF, Data: []byte("%PDF-1.4 garbage")}

	require.NoError(t, NewTextExtractor().Prepare(doc))
	assert.False(t, doc.HasText())
}

func TestPrepareRejectsEmptyAndUnsupported(t *testing.T) {
	extractor := NewTextExtractor()

	assert.ErrorIs(t, extractor.Prepare(&models.Document{Name: "cv.txt", MimeType: MimeText}), ErrUnreadableDocument)
	assert.ErrorIs(t, extractor.Prepare(&models.Document{Name: "cv.png", MimeType: "image/png", Data: []byte{1}}), ErrUnreadableDocument)
	assert.ErrorIs(t, extractor.Prepare(&models.Document{Name: "cv.txt", MimeType: MimeText, Data: []byte{0xff, 0xfe}}), ErrUnreadableDocument)
	assert.ErrorIs(t, extractor.Prepare(&models.Document{Name: "cv.txt", MimeType: MimeText, Data: []byte("   \n ")}), ErrUnreadableDocument)
	assert.ErrorIs(t, extractor.Prepare(nil), ErrUnreadableDocument)
}

func TestPrepareKeepsExistingText(t *testing.T) {
	doc := &models.Document{Name: "cv.pdf", MimeType: MimePDF, Text: "already there"}

	require.NoError(t, NewTextExtractor().Prepare(doc))
	assert.Equal(t, "already there", doc.Text)
}
