// Package reports manages uploaded blood report files and their metadata.
package reports

import "time"

// Report is the stored metadata for one uploaded blood report file.
type Report struct {
	ID               string     `json:"id"`
	CallerID         string     `json:"-"`
	FileName         string     `json:"fileName"`
	MimeType         string     `json:"mimeType"`
	SizeBytes        int64      `json:"sizeBytes"`
	StorageProvider  string     `json:"-"`
	StorageKey       string     `json:"-"`
	ExtractedTextKey string     `json:"-"`
	ExtractedAt      *time.Time `json:"extractedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}
