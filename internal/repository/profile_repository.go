package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tutordesk/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query profile failed: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) ListByRole(ctx context.Context, role string) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Where("role = ?", role).Order("name ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles failed: %w", err)
	}
	return profiles, nil
}

// Upsert inserts the profile or, when the id exists, updates name and grade only.
// The role of an existing row is never changed here.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "grade", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("upsert profile failed: %w", err)
	}
	return nil
}
