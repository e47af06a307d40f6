package app

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tutordesk/internal/cache"
	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
	"tutordesk/internal/testutil"
)

const (
	testAdminEmail = "tutor@example.com"
	testSecret     = "test-secret"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	fail    error
	objects map[string][]byte
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if f.fail != nil {
		return f.fail
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeWriter struct {
	out     string
	gotRaw  string
	gotName string
}

func (w *fakeWriter) ParentMessage(_ context.Context, rawText, studentName string) string {
	w.gotRaw = rawText
	w.gotName = studentName
	return w.out
}

type harness struct {
	db        *gorm.DB
	deps      WorkspaceDeps
	auth      *AuthService
	workspace *WorkspaceService
	voice     *VoiceService
	store     *fakeObjectStore
	writer    *fakeWriter
	states    *cache.MemoryStateStore
	hub       *SessionHub
	profiles  *repository.ProfileRepository
	subjects  *repository.SubjectRepository
	tasks     *repository.TaskRepository
	reports   *repository.ReportRepository
	docs      *repository.DocumentRepository
}

// testMaxUpload is the production default.
const testMaxUpload = 20 << 20

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()

	h := &harness{
		db:       db,
		store:    &fakeObjectStore{objects: map[string][]byte{}},
		writer:   &fakeWriter{out: "Bonjour, bonne séance aujourd'hui."},
		states:   cache.NewMemoryStateStore(),
		hub:      NewSessionHub(),
		profiles: repository.NewProfileRepository(db),
		subjects: repository.NewSubjectRepository(db),
		tasks:    repository.NewTaskRepository(db),
		reports:  repository.NewReportRepository(db),
		docs:     repository.NewDocumentRepository(db),
	}
	h.auth = NewAuthService(repository.NewAccountRepository(db), cache.NewMemoryRevocations(), h.states, h.hub, testSecret, time.Hour, log)
	h.deps = WorkspaceDeps{
		Profiles:   h.profiles,
		Subjects:   h.subjects,
		Tasks:      h.tasks,
		Reports:    h.reports,
		Loader:     NewLoader(repository.NewStudentRecords(db), log),
		Documents:  NewDocumentService(h.store, h.docs, testMaxUpload, log),
		States:     h.states,
		Events:     h.hub,
		AdminEmail: testAdminEmail,
	}
	h.workspace = NewWorkspaceService(h.deps, log)
	h.voice = NewVoiceService(h.workspace, h.writer, log)
	return h
}

func (h *harness) signUp(t *testing.T, email string) *Session {
	t.Helper()
	res, err := h.auth.SignUp(context.Background(), CredentialsInput{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res.Session
}

// student signs up an account and gives it a completed student profile.
func (h *harness) student(t *testing.T, email, name string) *Session {
	t.Helper()
	session := h.signUp(t, email)
	require.NoError(t, h.profiles.Upsert(context.Background(), &model.Profile{
		ID:    session.UserID,
		Name:  name,
		Grade: "4ème",
		Role:  model.RoleStudent,
	}))
	return session
}

// adminViewing signs the admin in and selects studentID.
func (h *harness) adminViewing(t *testing.T, studentID string) *Session {
	t.Helper()
	admin := h.signUp(t, testAdminEmail)
	_, err := h.workspace.SelectStudent(context.Background(), admin, studentID)
	require.NoError(t, err)
	return admin
}
