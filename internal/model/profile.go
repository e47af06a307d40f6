package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type Profile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Grade     string    `gorm:"size:64" json:"grade"`
	Role      string    `gorm:"size:16;not null;default:student;index" json:"role"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
