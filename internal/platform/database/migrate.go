package database

import (
	"fmt"

	"gorm.io/gorm"

	"tutordesk/internal/model"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Account{},
		&model.Profile{},
		&model.Subject{},
		&model.Task{},
		&model.Document{},
		&model.SessionReport{},
	); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
