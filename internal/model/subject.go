package model

import "time"

// Subject tracks a student's completion percentage in one subject.
type Subject struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	StudentID string    `gorm:"size:36;not null;index" json:"student_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Progress  int       `gorm:"not null;default:0" json:"progress"`
	Color     string    `gorm:"size:64" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}
