package models

import "time"

// SessionBlob is one keyed JSON blob of persisted session state.
type SessionBlob struct {
	Key       string    `gorm:"type:text;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionBlob) TableName() string {
	return "session_blobs"
}
