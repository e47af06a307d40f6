package model

import (
	"time"

	"gorm.io/datatypes"
)

// SessionReport is the admin's write-up of one tutoring session.
type SessionReport struct {
	ID           string                     `gorm:"primaryKey;size:36" json:"id"`
	StudentID    string                     `gorm:"size:36;not null;index" json:"student_id"`
	Subject      string                     `gorm:"size:128" json:"subject"`
	Summary      string                     `gorm:"size:512;not null" json:"summary"`
	FullFeedback string                     `gorm:"type:text;not null" json:"full_feedback"`
	NextGoals    datatypes.JSONSlice[string] `json:"next_goals"`
	IsNew        bool                       `gorm:"not null" json:"is_new"`
	CreatedAt    time.Time                  `json:"created_at"`
}

func (SessionReport) TableName() string {
	return "sessions_reports"
}
