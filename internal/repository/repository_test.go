package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutordesk/internal/model"
	"tutordesk/internal/testutil"
)

func TestProfileUpsertKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(testutil.NewDB(t))

	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "p1", Name: "Léa", Grade: "6ème B", Role: model.RoleAdmin}))
	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "p1", Name: "Léa M.", Grade: "5ème A", Role: model.RoleStudent}))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Léa M.", got.Name)
	assert.Equal(t, "5ème A", got.Grade)
	assert.Equal(t, model.RoleAdmin, got.Role)

	missing, err := repo.GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProfileListByRoleSortsByName(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(testutil.NewDB(t))
	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "b", Name: "Zoé", Role: model.RoleStudent}))
	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "a", Name: "Adam", Role: model.RoleStudent}))
	require.NoError(t, repo.Upsert(ctx, &model.Profile{ID: "t", Name: "Tutor", Role: model.RoleAdmin}))

	students, err := repo.ListByRole(ctx, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Adam", students[0].Name)
	assert.Equal(t, "Zoé", students[1].Name)
}

func TestTaskFlipCompletedIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(testutil.NewDB(t))
	task := &model.Task{StudentID: "s1", Title: "Exercices p.42"}
	require.NoError(t, repo.Create(ctx, task))
	require.NotEmpty(t, task.ID)

	require.NoError(t, repo.FlipCompleted(ctx, task.ID, false))
	assert.ErrorIs(t, repo.FlipCompleted(ctx, task.ID, false), ErrConflict)

	got, err := repo.GetByIDAndStudentID(ctx, task.ID, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	other, err := repo.GetByIDAndStudentID(ctx, task.ID, "s2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestReportsRoundTripGoalsAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewReportRepository(testutil.NewDB(t))
	older := &model.SessionReport{
		StudentID: "s1", Subject: "Français", Summary: "Le Petit Prince", FullFeedback: "ok",
		CreatedAt: time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
	}
	newer := &model.SessionReport{
		StudentID: "s1", Subject: "Maths", Summary: "Fractions", FullFeedback: "bien",
		NextGoals: []string{"Exercices p.54", "Pourcentages"}, IsNew: true,
		CreatedAt: time.Date(2023, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, &model.SessionReport{StudentID: "s2", Summary: "x", FullFeedback: "y"}))

	list, err := repo.ListByStudentID(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, []string{"Exercices p.54", "Pourcentages"}, []string(list[0].NextGoals))

	require.NoError(t, repo.MarkSeen(ctx, newer.ID, "s1"))
	list, err = repo.ListByStudentID(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, list[0].IsNew)
}

func TestStudentRecordsScopeByStudent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	records := NewStudentRecords(db)

	require.NoError(t, NewSubjectRepository(db).Create(ctx, &model.Subject{StudentID: "s1", Name: "Maths", Progress: 75}))
	require.NoError(t, NewSubjectRepository(db).Create(ctx, &model.Subject{StudentID: "s2", Name: "SVT", Progress: 60}))
	require.NoError(t, NewDocumentRepository(db).Create(ctx, &model.Document{StudentID: "s2", Name: "a.pdf", Type: model.DocumentTypePDF}))

	subjects, err := records.LoadSubjects(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Maths", subjects[0].Name)

	docs, err := records.LoadDocuments(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAccountCreateReportsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testutil.NewDB(t))

	require.NoError(t, repo.Create(ctx, &model.Account{Email: "lea@example.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &model.Account{Email: "lea@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
