package models

import "time"

// ComplaintAttachment records one uploaded file tied to a complaint. The
// bytes themselves live in the object store under StorageKey.
type ComplaintAttachment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ComplaintID      uint      `gorm:"not null;index" json:"complaint_id"`
	Filename         string    `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string    `gorm:"size:255;not null" json:"original_filename"`
	StorageKey       string    `gorm:"size:500;not null" json:"-"`
	FileURL          string    `gorm:"size:500" json:"file_url,omitempty"`
	FileSize         int64     `gorm:"not null" json:"file_size"`
	MimeType         string    `gorm:"size:100;not null" json:"mime_type"`
	CreatedAt        time.Time `json:"created_at"`
}

func (ComplaintAttachment) TableName() string { return "complaint_attachments" }
