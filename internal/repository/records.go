package repository

import (
	"context"

	"gorm.io/gorm"

	"tutordesk/internal/model"
)

// StudentRecords reads everything displayed for one student.
type StudentRecords struct {
	profiles  *ProfileRepository
	subjects  *SubjectRepository
	tasks     *TaskRepository
	documents *DocumentRepository
	reports   *ReportRepository
}

func NewStudentRecords(db *gorm.DB) *StudentRecords {
	return &StudentRecords{
		profiles:  NewProfileRepository(db),
		subjects:  NewSubjectRepository(db),
		tasks:     NewTaskRepository(db),
		documents: NewDocumentRepository(db),
		reports:   NewReportRepository(db),
	}
}

func (s *StudentRecords) LoadProfile(ctx context.Context, studentID string) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, studentID)
}

func (s *StudentRecords) LoadSubjects(ctx context.Context, studentID string) ([]model.Subject, error) {
	return s.subjects.ListByStudentID(ctx, studentID)
}

func (s *StudentRecords) LoadTasks(ctx context.Context, studentID string) ([]model.Task, error) {
	return s.tasks.ListByStudentID(ctx, studentID)
}

func (s *StudentRecords) LoadDocuments(ctx context.Context, studentID string) ([]model.Document, error) {
	return s.documents.ListByStudentID(ctx, studentID)
}

func (s *StudentRecords) LoadReports(ctx context.Context, studentID string) ([]model.SessionReport, error) {
	return s.reports.ListByStudentID(ctx, studentID)
}
