package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBytesDetectsMimeType(t *testing.T) {
	svc := NewUploadService(1024)

	doc, err := svc.ReadBytes("cv.txt", []byte("Jane Doe, Go developer"))
	require.NoError(t, err)
	assert.Equal(t, MimeText, doc.MimeType)
	assert.Equal(t, "cv.txt", doc.Name)

	doc, err = svc.ReadBytes("cv.md", []byte("# Jane Doe"))
	require.NoError(t, err)
	assert.Equal(t, MimeMarkdown, doc.MimeType)

	doc, err = svc.ReadBytes("cv.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))
	require.NoError(t, err)
	assert.Equal(t, MimePDF, doc.MimeType)

	doc, err = svc.ReadBytes("cv.docx", buildDocx(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`))
	require.NoError(t, err)
	assert.Equal(t, MimeDOCX, doc.MimeType)
}

func TestReadBytesValidation(t *testing.T) {
	svc := NewUploadService(8)

	_, err := svc.ReadBytes("cv.exe", []byte("x"))
	assert.Error(t, err)

	_, err = svc.ReadBytes("cv.txt", nil)
	assert.Error(t, err)

	_, err = svc.ReadBytes("cv.txt", []byte("more than eight bytes"))
	assert.Error(t, err)
}

func TestReadPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jane.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe"), 0o644))

	doc, err := NewUploadService(0).ReadPath(path)
	require.NoError(t, err)
	assert.Equal(t, "jane.txt", doc.Name)
	assert.Equal(t, []byte("Jane Doe"), doc.Data)

	_, err = NewUploadService(0).ReadPath(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = NewUploadService(4).ReadPath(path)
	assert.Error(t, err)
}
