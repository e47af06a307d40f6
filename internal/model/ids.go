package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (a *Account) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }
func (s *Subject) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }
func (t *Task) BeforeCreate(*gorm.DB) error { newID(&t.ID); return nil }
func (d *Document) BeforeCreate(*gorm.DB) error { newID(&d.ID); return nil }
func (r *SessionReport) BeforeCreate(*gorm.DB) error { newID(&r.ID); return nil }
