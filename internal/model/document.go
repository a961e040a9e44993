package model

import "time"

// Document represents uploaded file metadata. The bytes live in blob storage
// under StorageKey.
type Document struct {
	ID               int64
	ClientID         int64
	Title            string
	OriginalFilename string
	StorageKey       string
	FileSize         int64
	MimeType         string
	IsDeleted        bool
	UploadedBy       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DocumentResponse represents document metadata in API responses.
type DocumentResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	UploadedBy       int64     `json:"uploaded_by"`
	CreatedOn        time.Time `json:"created_on"`
}
