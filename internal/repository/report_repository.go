package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tutordesk/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *model.SessionReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("create session report failed: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListByStudentID(ctx context.Context, studentID string) ([]model.SessionReport, error) {
	var list []model.SessionReport
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list session reports failed: %w", err)
	}
	return list, nil
}

// MarkSeen clears the "new" badge of one report owned by studentID.
func (r *ReportRepository) MarkSeen(ctx context.Context, id, studentID string) error {
	err := r.db.WithContext(ctx).Model(&model.SessionReport{}).
		Where("id = ? AND student_id = ?", id, studentID).
		Update("is_new", false).Error
	if err != nil {
		return fmt.Errorf("mark session report seen failed: %w", err)
	}
	return nil
}
