package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tutordesk/internal/model"
)

type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	if err := r.db.WithContext(ctx).Create(subject).Error; err != nil {
		return fmt.Errorf("create subject failed: %w", err)
	}
	return nil
}

func (r *SubjectRepository) ListByStudentID(ctx context.Context, studentID string) ([]model.Subject, error) {
	var subjects []model.Subject
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("created_at ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects failed: %w", err)
	}
	return subjects, nil
}
