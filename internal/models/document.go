package models

import "time"

// DocumentType enumerates accepted attachment formats.
type DocumentType string

const (
	DocumentPDF   DocumentType = "pdf"
	DocumentImage DocumentType = "image"
	DocumentDoc   DocumentType = "doc"
)

// StudentDocument is an attachment reference on a student's record.
// Append-only; the URL is opaque to the domain.
type StudentDocument struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        DocumentType `json:"type"`
	Date        time.Time    `json:"date"`
	Responsible string       `json:"responsible"`
	URL         string       `json:"url"`
}
