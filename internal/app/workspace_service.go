package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
)

const (
	defaultTaskCategory  = "Devoirs"
	defaultTaskColor     = "bg-white"
	defaultReportSubject = "Maths"
	defaultSubjectColor  = "bg-blue-500"
	reportDateLayout     = "2006-01-02"
)

// StateStore keeps the per-session ViewState. Update applies fn atomically and
// stores nothing when fn returns an error.
type StateStore interface {
	Load(ctx context.Context, sessionID string) (model.ViewState, error)
	Update(ctx context.Context, sessionID string, fn func(*model.ViewState) error) (model.ViewState, error)
	Delete(ctx context.Context, sessionID string) error
}

type WorkspaceService struct {
	profiles   *repository.ProfileRepository
	subjects   *repository.SubjectRepository
	tasks      *repository.TaskRepository
	reports    *repository.ReportRepository
	loader     *Loader
	documents  *DocumentService
	states     StateStore
	events     SessionEventPublisher
	adminEmail string
	log        *logger.Logger
}

type WorkspaceDeps struct {
	Profiles   *repository.ProfileRepository
	Subjects   *repository.SubjectRepository
	Tasks      *repository.TaskRepository
	Reports    *repository.ReportRepository
	Loader     *Loader
	Documents  *DocumentService
	States     StateStore
	Events     SessionEventPublisher
	AdminEmail string
}

func NewWorkspaceService(deps WorkspaceDeps, log *logger.Logger) *WorkspaceService {
	return &WorkspaceService{
		profiles:   deps.Profiles,
		subjects:   deps.Subjects,
		tasks:      deps.Tasks,
		reports:    deps.Reports,
		loader:     deps.Loader,
		documents:  deps.Documents,
		states:     deps.States,
		events:     deps.Events,
		adminEmail: deps.AdminEmail,
		log:        log.With("service", "WorkspaceService"),
	}
}

// viewContext is one resolved request: who is asking and what they look at.
type viewContext struct {
	session *Session
	own     *model.Profile
	res     Resolution
	state   model.ViewState
}

type CreateTaskInput struct {
	Title    string
	Category string
	DueDate  string
	Color    string
}

type CreateReportInput struct {
	Subject      string
	Summary      string
	FullFeedback string
	Date         string
	NextGoals    []string
}

type CreateSubjectInput struct {
	Name     string
	Progress int
	Color    string
}

type ProfileInput struct {
	Name  string
	Grade string
}

func (s *WorkspaceService) resolve(ctx context.Context, session *Session) (*viewContext, error) {
	if session == nil {
		return nil, ErrUnauthenticated
	}
	own, err := s.profiles.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	state, err := s.states.Load(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load view state failed: %w", err)
	}

	res := ResolveRole(session, own, s.adminEmail, state.ViewingStudentID)
	if !res.IsAdmin && state.ViewingStudentID != res.ViewingStudentID {
		state, err = s.states.Update(ctx, session.ID, func(st *model.ViewState) error {
			st.SetViewingStudent(res.ViewingStudentID)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("store view state failed: %w", err)
		}
	}
	return &viewContext{session: session, own: own, res: res, state: state}, nil
}

// update changes the stored state and re-resolves the request against it.
func (s *WorkspaceService) update(ctx context.Context, vc *viewContext, fn func(*model.ViewState) error) error {
	state, err := s.states.Update(ctx, vc.session.ID, fn)
	if err != nil {
		return err
	}
	vc.state = state
	vc.res = ResolveRole(vc.session, vc.own, s.adminEmail, state.ViewingStudentID)
	return nil
}

func (s *WorkspaceService) render(ctx context.Context, vc *viewContext) (*Screen, error) {
	switch vc.res.Phase {
	case PhaseOnboarding:
		if vc.state.View != string(ViewOnboarding) {
			if err := s.update(ctx, vc, func(st *model.ViewState) error {
				st.View = string(ViewOnboarding)
				return nil
			}); err != nil {
				return nil, err
			}
		}
		screen := RouteView(RouteInput{Resolution: vc.res, State: vc.state, OwnProfile: vc.own})
		return &screen, nil
	case PhaseAdminRoster:
		roster, err := s.profiles.ListByRole(ctx, model.RoleStudent)
		screen := RouteView(RouteInput{Resolution: vc.res, State: vc.state, Roster: roster})
		if err != nil {
			s.log.Error("fetch failed", "entity", "roster", "error", err)
			screen.Warnings = append(screen.Warnings, "roster could not be loaded")
		}
		return &screen, nil
	}

	generation := vc.state.Generation
	snap, err := s.loader.Load(ctx, vc.res.ViewingStudentID, vc.res.IsAdmin)
	if err != nil {
		return nil, err
	}
	current, err := s.states.Load(ctx, vc.session.ID)
	if err != nil {
		return nil, fmt.Errorf("load view state failed: %w", err)
	}
	if current.Generation != generation || current.ViewingStudentID != snap.StudentID {
		s.log.Debug("discarding stale load", "session_id", vc.session.ID, "student_id", snap.StudentID)
		return nil, ErrStaleView
	}
	vc.state = current

	if snap.NeedsOnboarding {
		vc.res.Phase = PhaseOnboarding
		return s.render(ctx, vc)
	}
	screen := RouteView(RouteInput{Resolution: vc.res, State: vc.state, Snapshot: snap, OwnProfile: vc.own})
	return &screen, nil
}

// Screen renders the current view of a session.
func (s *WorkspaceService) Screen(ctx context.Context, session *Session) (*Screen, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

// Resolve reports the role resolution of a session without loading any record.
func (s *WorkspaceService) Resolve(ctx context.Context, session *Session) (Resolution, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return Resolution{}, err
	}
	return vc.res, nil
}

func (s *WorkspaceService) Navigate(ctx context.Context, session *Session, rawView string) (*Screen, error) {
	view, ok := ParseView(rawView)
	if !ok || view == ViewOnboarding {
		return nil, ErrInvalidInput
	}
	vc, err := s.viewing(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		st.View = string(view)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

func (s *WorkspaceService) SelectDocument(ctx context.Context, session *Session, documentID string) (*Screen, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, ErrInvalidInput
	}
	vc, err := s.viewing(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		st.SelectedDocumentID = documentID
		st.View = string(ViewDocumentDetail)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

// SelectReport opens a report. A student opening their own report clears its
// "new" badge.
func (s *WorkspaceService) SelectReport(ctx context.Context, session *Session, reportID string) (*Screen, error) {
	if strings.TrimSpace(reportID) == "" {
		return nil, ErrInvalidInput
	}
	vc, err := s.viewing(ctx, session)
	if err != nil {
		return nil, err
	}
	if !vc.res.IsAdmin {
		if err := s.reports.MarkSeen(ctx, reportID, vc.res.ViewingStudentID); err != nil {
			s.log.Warn("mark report seen failed", "report_id", reportID, "error", err)
		}
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		st.SelectedReportID = reportID
		st.View = string(ViewReportDetail)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

// Roster lists every student profile by name. Admin only.
func (s *WorkspaceService) Roster(ctx context.Context, session *Session) ([]model.Profile, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !vc.res.IsAdmin {
		return nil, ErrForbidden
	}
	return s.profiles.ListByRole(ctx, model.RoleStudent)
}

func (s *WorkspaceService) SelectStudent(ctx context.Context, session *Session, studentID string) (*Screen, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !vc.res.IsAdmin {
		return nil, ErrForbidden
	}
	student, err := s.profiles.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, ErrNotFound
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		st.SetViewingStudent(studentID)
		st.View = string(ViewDashboard)
		return nil
	}); err != nil {
		return nil, err
	}
	s.log.Info("admin viewing student", "admin_id", session.UserID, "student_id", studentID)
	return s.render(ctx, vc)
}

// ClearStudent returns an admin to the roster.
func (s *WorkspaceService) ClearStudent(ctx context.Context, session *Session) (*Screen, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !vc.res.IsAdmin {
		return nil, ErrForbidden
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		st.SetViewingStudent("")
		st.View = string(ViewDashboard)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

// ToggleTask flips one task of the signed-in student. The returned task
// carries the stored flag; on any error nothing changed.
func (s *WorkspaceService) ToggleTask(ctx context.Context, session *Session, taskID string) (*model.Task, error) {
	vc, err := s.viewing(ctx, session)
	if err != nil {
		return nil, err
	}
	if vc.res.IsAdmin {
		return nil, ErrForbidden
	}
	task, err := s.tasks.GetByIDAndStudentID(ctx, taskID, vc.res.ViewingStudentID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}
	if err := s.tasks.FlipCompleted(ctx, task.ID, task.IsCompleted); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.log.Warn("task changed concurrently", "task_id", task.ID)
		}
		return nil, err
	}
	task.IsCompleted = !task.IsCompleted
	return task, nil
}

func (s *WorkspaceService) CreateTask(ctx context.Context, session *Session, input CreateTaskInput) (*Screen, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	vc, err := s.adminViewing(ctx, session)
	if err != nil {
		return nil, err
	}
	task := &model.Task{
		StudentID: vc.res.ViewingStudentID,
		Title:     title,
		Category:  orDefault(input.Category, defaultTaskCategory),
		DueDate:   strings.TrimSpace(input.DueDate),
		Color:     orDefault(input.Color, defaultTaskColor),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task created", "student_id", task.StudentID, "task_id", task.ID)
	return s.render(ctx, vc)
}

func (s *WorkspaceService) CreateReport(ctx context.Context, session *Session, input CreateReportInput) (*Screen, error) {
	summary := strings.TrimSpace(input.Summary)
	feedback := strings.TrimSpace(input.FullFeedback)
	if summary == "" || feedback == "" {
		return nil, ErrInvalidInput
	}
	var createdAt time.Time
	if date := strings.TrimSpace(input.Date); date != "" {
		parsed, err := time.ParseInLocation(reportDateLayout, date, time.Local)
		if err != nil {
			return nil, ErrInvalidInput
		}
		createdAt = parsed
	}
	vc, err := s.adminViewing(ctx, session)
	if err != nil {
		return nil, err
	}

	goals := make([]string, 0, len(input.NextGoals))
	for _, g := range input.NextGoals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}
	report := &model.SessionReport{
		StudentID:    vc.res.ViewingStudentID,
		Subject:      orDefault(input.Subject, defaultReportSubject),
		Summary:      summary,
		FullFeedback: feedback,
		NextGoals:    goals,
		IsNew:        true,
		CreatedAt:    createdAt,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	s.log.Info("session report created", "student_id", report.StudentID, "report_id", report.ID)
	return s.render(ctx, vc)
}

func (s *WorkspaceService) CreateSubject(ctx context.Context, session *Session, input CreateSubjectInput) (*Screen, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Progress < 0 || input.Progress > 100 {
		return nil, ErrInvalidInput
	}
	vc, err := s.adminViewing(ctx, session)
	if err != nil {
		return nil, err
	}
	subject := &model.Subject{
		StudentID: vc.res.ViewingStudentID,
		Name:      name,
		Progress:  input.Progress,
		Color:     orDefault(input.Color, defaultSubjectColor),
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, err
	}
	return s.render(ctx, vc)
}

// SaveProfile writes the caller's own profile, or the viewed student's when
// the caller is an admin. Leaving onboarding lands on the dashboard.
func (s *WorkspaceService) SaveProfile(ctx context.Context, session *Session, input ProfileInput) (*Screen, error) {
	name := strings.TrimSpace(input.Name)
	grade := strings.TrimSpace(input.Grade)
	if name == "" || grade == "" {
		return nil, ErrInvalidInput
	}
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}

	targetID := session.UserID
	if vc.res.IsAdmin {
		if vc.res.ViewingStudentID == "" {
			return nil, ErrNoStudentSelected
		}
		targetID = vc.res.ViewingStudentID
	}
	profile := &model.Profile{ID: targetID, Name: name, Grade: grade, Role: model.RoleStudent}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}

	if targetID == session.UserID {
		if vc.own, err = s.profiles.GetByID(ctx, session.UserID); err != nil {
			return nil, err
		}
	}
	if err := s.update(ctx, vc, func(st *model.ViewState) error {
		if st.View == "" || st.View == string(ViewOnboarding) {
			st.View = string(ViewDashboard)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	s.publishProfileUpdated(ctx, targetID)
	return s.render(ctx, vc)
}

// UploadDocument stores a file for the signed-in student, or for the viewed
// student when the caller is an admin.
func (s *WorkspaceService) UploadDocument(ctx context.Context, session *Session, input UploadInput) (*model.Document, error) {
	vc, err := s.viewing(ctx, session)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.Upload(ctx, vc.res.ViewingStudentID, input)
	if err != nil {
		return nil, err
	}
	s.log.Info("document uploaded", "student_id", doc.StudentID, "document_id", doc.ID, "type", doc.Type)
	return doc, nil
}

// viewing resolves a session that has a student in view.
func (s *WorkspaceService) viewing(ctx context.Context, session *Session) (*viewContext, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	switch vc.res.Phase {
	case PhaseOnboarding:
		return nil, ErrOnboardingRequired
	case PhaseAdminRoster:
		return nil, ErrNoStudentSelected
	}
	return vc, nil
}

func (s *WorkspaceService) adminViewing(ctx context.Context, session *Session) (*viewContext, error) {
	vc, err := s.resolve(ctx, session)
	if err != nil {
		return nil, err
	}
	if !vc.res.IsAdmin {
		return nil, ErrForbidden
	}
	if vc.res.ViewingStudentID == "" {
		return nil, ErrNoStudentSelected
	}
	return vc, nil
}

func (s *WorkspaceService) publishProfileUpdated(ctx context.Context, userID string) {
	if s.events == nil {
		return
	}
	evt := model.SessionEvent{Type: model.SessionProfileUpdated, UserID: userID, At: time.Now().UTC()}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("publish session event failed", "type", evt.Type, "error", err)
	}
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
