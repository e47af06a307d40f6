package app

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
)

// RecordSource reads the rows displayed for one student.
type RecordSource interface {
	LoadProfile(ctx context.Context, studentID string) (*model.Profile, error)
	LoadSubjects(ctx context.Context, studentID string) ([]model.Subject, error)
	LoadTasks(ctx context.Context, studentID string) ([]model.Task, error)
	LoadDocuments(ctx context.Context, studentID string) ([]model.Document, error)
	LoadReports(ctx context.Context, studentID string) ([]model.SessionReport, error)
}

// Snapshot is everything loaded for one student by one Load call.
type Snapshot struct {
	StudentID       string
	Profile         *model.Profile
	Subjects        []model.Subject
	Tasks           []model.Task
	Documents       []model.Document
	Reports         []model.SessionReport
	NeedsOnboarding bool
	Warnings        []string
}

type Loader struct {
	records RecordSource
	log     *logger.Logger
}

func NewLoader(records RecordSource, log *logger.Logger) *Loader {
	return &Loader{records: records, log: log.With("component", "Loader")}
}

// Load fetches the profile first, then the four lists concurrently. A failed
// fetch is logged and leaves its list empty; it never aborts the others.
func (l *Loader) Load(ctx context.Context, studentID string, isAdmin bool) (*Snapshot, error) {
	if studentID == "" {
		return nil, ErrNoStudentSelected
	}
	snap := &Snapshot{StudentID: studentID}

	profile, err := l.records.LoadProfile(ctx, studentID)
	if err != nil {
		l.warn(snap, "profile", err)
	} else {
		snap.Profile = profile
		if !isAdmin && (profile == nil || strings.TrimSpace(profile.Name) == "") {
			snap.NeedsOnboarding = true
			return snap, nil
		}
	}

	var (
		subjects  []model.Subject
		tasks     []model.Task
		documents []model.Document
		reports   []model.SessionReport
		errs      [4]error
	)
	var g errgroup.Group
	g.Go(func() error { subjects, errs[0] = l.records.LoadSubjects(ctx, studentID); return nil })
	g.Go(func() error { tasks, errs[1] = l.records.LoadTasks(ctx, studentID); return nil })
	g.Go(func() error { documents, errs[2] = l.records.LoadDocuments(ctx, studentID); return nil })
	g.Go(func() error { reports, errs[3] = l.records.LoadReports(ctx, studentID); return nil })
	_ = g.Wait()

	for i, name := range []string{"subjects", "tasks", "documents", "reports"} {
		if errs[i] != nil {
			l.warn(snap, name, errs[i])
		}
	}

	snap.Subjects = ownedBy(subjects, studentID, func(s model.Subject) string { return s.StudentID })
	snap.Tasks = ownedBy(tasks, studentID, func(t model.Task) string { return t.StudentID })
	snap.Documents = ownedBy(documents, studentID, func(d model.Document) string { return d.StudentID })
	snap.Reports = ownedBy(reports, studentID, func(r model.SessionReport) string { return r.StudentID })
	return snap, nil
}

func (l *Loader) warn(snap *Snapshot, entity string, err error) {
	l.log.Error("fetch failed", "entity", entity, "student_id", snap.StudentID, "error", err)
	snap.Warnings = append(snap.Warnings, entity+" could not be loaded")
}

func ownedBy[T any](rows []T, studentID string, owner func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if owner(row) == studentID {
			out = append(out, row)
		}
	}
	return out
}
