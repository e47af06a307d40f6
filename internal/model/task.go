package model

import "time"

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	StudentID   string    `gorm:"size:36;not null;index" json:"student_id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Category    string    `gorm:"size:64" json:"category"`
	DueDate     string    `gorm:"size:64" json:"due_date"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	Color       string    `gorm:"size:64" json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}
