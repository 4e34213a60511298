package models

import "time"

type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusError      FileStatus = "error"
)

// ProcessingFile is an uploaded candidate file tracked through a batch run.
type ProcessingFile struct {
	ID         string     `json:"id"`
	Document   *Document  `json:"document"`
	Status     FileStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
}
