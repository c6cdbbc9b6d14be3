package models

import "time"

// Upload is the stored metadata for one file attached to a complaint.
// The bytes themselves live in the upload blob directory keyed by ID.
type Upload struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	Filename    string    `json:"filename"`
	MediaType   string    `json:"media_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProblematicArticle is one flagged article URL.
type ProblematicArticle struct {
	URL       string    `json:"URL"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}
