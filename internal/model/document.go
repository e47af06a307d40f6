package model

import "time"

const (
	DocumentTypePDF   = "pdf"
	DocumentTypeDoc   = "doc"
	DocumentTypeImage = "image"
)

type Document struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StudentID  string    `gorm:"size:36;not null;index" json:"student_id"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	Type       string    `gorm:"size:16;not null" json:"type"`
	Size       string    `gorm:"size:32" json:"size"`
	FileURL    string    `gorm:"size:1024" json:"file_url"`
	StorageKey string    `gorm:"size:256" json:"-"`
	Pages      int       `json:"pages,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
