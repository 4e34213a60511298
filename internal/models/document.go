package models

// Document is an uploaded file held in memory for the lifetime of a session.
// Raw bytes are never serialized.
type Document struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
	Text     string `json:"-"`
}

func (d *Document) HasText() bool {
	return d != nil && d.Text != ""
}
