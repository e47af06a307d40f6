package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tutordesk/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByStudentID(ctx context.Context, studentID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDAndStudentID(ctx context.Context, id, studentID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND student_id = ?", id, studentID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// FlipCompleted sets is_completed to !current, only if the stored flag still
// equals current. ErrConflict reports a flag changed by someone else meanwhile.
func (r *TaskRepository) FlipCompleted(ctx context.Context, id string, current bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND is_completed = ?", id, current).
		Update("is_completed", !current)
	if res.Error != nil {
		return fmt.Errorf("update task completion failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
