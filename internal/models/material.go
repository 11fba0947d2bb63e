package models

import "time"

// Material is an uploaded source document (PDF or slide deck)
type Material struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ObjectPath string    `json:"object_path"` // key in object storage
	PageCount  int       `json:"page_count,omitempty"`
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
