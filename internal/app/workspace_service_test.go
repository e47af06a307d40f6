package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
)

func TestNewAccountGoesThroughOnboarding(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	session := h.signUp(t, "new@example.com")

	screen, err := h.workspace.Screen(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, ScreenOnboarding, screen.Kind)
	assert.Equal(t, PhaseOnboarding, screen.Phase)

	_, err = h.workspace.Navigate(ctx, session, string(ViewDocuments))
	assert.ErrorIs(t, err, ErrOnboardingRequired)

	_, err = h.workspace.SaveProfile(ctx, session, ProfileInput{Name: "  ", Grade: "5ème"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	screen, err = h.workspace.SaveProfile(ctx, session, ProfileInput{Name: "Léa", Grade: "5ème"})
	require.NoError(t, err)
	assert.Equal(t, ScreenStudentDashboard, screen.Kind)
	require.NotNil(t, screen.Student)
	assert.Equal(t, "Léa", screen.Student.Name)

	profile, err := h.profiles.GetByID(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, profile.Role)
}

func TestProfileSavePublishesEvent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	session := h.signUp(t, "new@example.com")
	events, cancel := h.hub.Subscribe(session.UserID)
	defer cancel()

	_, err := h.workspace.SaveProfile(ctx, session, ProfileInput{Name: "Léa", Grade: "5ème"})
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, model.SessionProfileUpdated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("no profile_updated event")
	}
}

func TestAdminRosterAndStudentSelection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	zoe := h.student(t, "zoe@example.com", "Zoé")
	adam := h.student(t, "adam@example.com", "Adam")
	admin := h.signUp(t, "Tutor@Example.com")

	screen, err := h.workspace.Screen(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, ScreenRoster, screen.Kind)
	require.Len(t, screen.Roster, 2)
	assert.Equal(t, "Adam", screen.Roster[0].Name)

	_, err = h.workspace.SelectStudent(ctx, admin, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = h.workspace.SelectStudent(ctx, zoe, adam.UserID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.workspace.Roster(ctx, zoe)
	assert.ErrorIs(t, err, ErrForbidden)

	screen, err = h.workspace.SelectStudent(ctx, admin, adam.UserID)
	require.NoError(t, err)
	assert.Equal(t, ScreenAdminDashboard, screen.Kind)
	assert.Equal(t, adam.UserID, screen.Student.ID)
	assert.Contains(t, screen.Actions, ActionBackToRoster)

	screen, err = h.workspace.ClearStudent(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, ScreenRoster, screen.Kind)
}

// switchingSource moves the session to another student while a load for the
// first one is still running.
type switchingSource struct {
	RecordSource
	once   func()
	called bool
}

func (s *switchingSource) LoadTasks(ctx context.Context, studentID string) ([]model.Task, error) {
	if !s.called {
		s.called = true
		s.once()
	}
	return s.RecordSource.LoadTasks(ctx, studentID)
}

func TestLateLoadForPreviousStudentIsDiscarded(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.student(t, "a@example.com", "Alice")
	b := h.student(t, "b@example.com", "Bob")
	require.NoError(t, h.tasks.Create(ctx, &model.Task{StudentID: a.UserID, Title: "Exercice A"}))
	admin := h.adminViewing(t, a.UserID)

	source := &switchingSource{
		RecordSource: repository.NewStudentRecords(h.db),
		once: func() {
			_, err := h.states.Update(ctx, admin.ID, func(st *model.ViewState) error {
				st.SetViewingStudent(b.UserID)
				return nil
			})
			assert.NoError(t, err)
		},
	}
	deps := h.deps
	deps.Loader = NewLoader(source, logger.Nop())
	ws := NewWorkspaceService(deps, logger.Nop())

	_, err := ws.Screen(ctx, admin)
	require.ErrorIs(t, err, ErrStaleView)

	screen, err := ws.Screen(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, b.UserID, screen.Student.ID)
	assert.Empty(t, screen.Tasks)
}

func TestToggleTaskFlipsOnlyOwnTasks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	tom := h.student(t, "tom@example.com", "Tom")
	task := &model.Task{StudentID: lea.UserID, Title: "Lire le chapitre 3"}
	require.NoError(t, h.tasks.Create(ctx, task))

	got, err := h.workspace.ToggleTask(ctx, lea, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	stored, err := h.tasks.GetByIDAndStudentID(ctx, task.ID, lea.UserID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)

	got, err = h.workspace.ToggleTask(ctx, lea, task.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)

	_, err = h.workspace.ToggleTask(ctx, tom, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	admin := h.adminViewing(t, lea.UserID)
	_, err = h.workspace.ToggleTask(ctx, admin, task.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err = h.tasks.GetByIDAndStudentID(ctx, task.ID, lea.UserID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
}

func TestCreateTaskAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")

	_, err := h.workspace.CreateTask(ctx, lea, CreateTaskInput{Title: "Fiche"})
	assert.ErrorIs(t, err, ErrForbidden)

	admin := h.signUp(t, testAdminEmail)
	_, err = h.workspace.CreateTask(ctx, admin, CreateTaskInput{Title: "Fiche"})
	assert.ErrorIs(t, err, ErrNoStudentSelected)

	_, err = h.workspace.SelectStudent(ctx, admin, lea.UserID)
	require.NoError(t, err)
	_, err = h.workspace.CreateTask(ctx, admin, CreateTaskInput{Title: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	screen, err := h.workspace.CreateTask(ctx, admin, CreateTaskInput{Title: " Fiche de révision ", DueDate: "Lundi"})
	require.NoError(t, err)
	require.Len(t, screen.Tasks, 1)
	task := screen.Tasks[0]
	assert.Equal(t, "Fiche de révision", task.Title)
	assert.Equal(t, "Devoirs", task.Category)
	assert.Equal(t, "bg-white", task.Color)
	assert.Equal(t, "Lundi", task.DueDate)
	assert.False(t, task.IsCompleted)
	assert.Equal(t, lea.UserID, task.StudentID)
}

func TestCreateReportValidatesBeforeInsert(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	admin := h.adminViewing(t, lea.UserID)

	_, err := h.workspace.CreateReport(ctx, admin, CreateReportInput{FullFeedback: "Très bien"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = h.workspace.CreateReport(ctx, admin, CreateReportInput{Summary: "Fractions", FullFeedback: "ok", Date: "15/10"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	require.NoError(t, h.db.Model(&model.SessionReport{}).Count(&count).Error)
	assert.Zero(t, count)

	screen, err := h.workspace.CreateReport(ctx, admin, CreateReportInput{
		Summary:      "Fractions",
		FullFeedback: "Bonne séance, à revoir les dénominateurs.",
		Date:         "2026-10-01",
		NextGoals:    []string{"Exercices p.42", " ", "Relire la leçon"},
	})
	require.NoError(t, err)
	require.Len(t, screen.Reports, 1)
	report := screen.Reports[0]
	assert.Equal(t, "Maths", report.Subject)
	assert.True(t, report.IsNew)
	assert.Equal(t, []string{"Exercices p.42", "Relire la leçon"}, []string(report.NextGoals))
	assert.Equal(t, "2026-10-01", report.CreatedAt.Local().Format("2006-01-02"))
	assert.Equal(t, 1, screen.Stats.NewReports)
}

func TestStudentOpeningReportClearsNewBadge(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	report := &model.SessionReport{StudentID: lea.UserID, Summary: "Géométrie", FullFeedback: "ok", IsNew: true}
	require.NoError(t, h.reports.Create(ctx, report))

	screen, err := h.workspace.SelectReport(ctx, lea, report.ID)
	require.NoError(t, err)
	assert.Equal(t, ScreenReportDetail, screen.Kind)
	require.NotNil(t, screen.Report)
	assert.False(t, screen.Report.IsNew)
	assert.Equal(t, ViewReports, screen.BackTo)

	screen, err = h.workspace.SelectReport(ctx, lea, "unknown")
	require.NoError(t, err)
	assert.Equal(t, ScreenEmpty, screen.Kind)
	assert.Equal(t, ViewReports, screen.BackTo)
}

func TestNavigateRejectsUnknownView(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")

	_, err := h.workspace.Navigate(ctx, lea, "settings")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = h.workspace.Navigate(ctx, lea, string(ViewOnboarding))
	assert.ErrorIs(t, err, ErrInvalidInput)

	screen, err := h.workspace.Navigate(ctx, lea, string(ViewCourses))
	require.NoError(t, err)
	assert.Equal(t, ScreenCourses, screen.Kind)
}

func TestUploadDocumentForViewedStudent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	admin := h.adminViewing(t, lea.UserID)

	doc, err := h.workspace.UploadDocument(ctx, admin, UploadInput{
		Filename:    "cours.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("not really a pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, lea.UserID, doc.StudentID)
	assert.Equal(t, model.DocumentTypePDF, doc.Type)
	assert.Equal(t, "https://cdn.test/"+doc.StorageKey, doc.FileURL)
	assert.Zero(t, doc.Pages)

	h.store.fail = errors.New("bucket unavailable")
	_, err = h.workspace.UploadDocument(ctx, lea, UploadInput{Filename: "photo.png", ContentType: "image/png", Body: strings.NewReader("png")})
	assert.ErrorIs(t, err, ErrUploadFailed)

	docs, err := h.docs.ListByStudentID(ctx, lea.UserID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUploadedNotesAreTaggedAndSized(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")

	doc, err := h.workspace.UploadDocument(ctx, lea, UploadInput{
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader(strings.Repeat("x", 2150000)),
	})
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", doc.Name)
	assert.Equal(t, model.DocumentTypePDF, doc.Type)
	assert.Equal(t, "2.1 MB", doc.Size)
	assert.Len(t, h.store.objects[doc.StorageKey], 2150000)

	_, err = h.workspace.UploadDocument(ctx, lea, UploadInput{
		Filename: "huge.pdf",
		Body:     strings.NewReader(strings.Repeat("x", testMaxUpload+1)),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
