package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutordesk/internal/model"
)

func TestVoiceAssistantFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	admin := h.adminViewing(t, lea.UserID)

	draft, err := h.voice.Start(ctx, admin, false)
	assert.ErrorIs(t, err, ErrSpeechUnsupported)
	assert.Equal(t, model.VoiceIdle, draft.Step)

	draft, err = h.voice.Start(ctx, admin, true)
	require.NoError(t, err)
	assert.Equal(t, model.VoiceListening, draft.Step)
	assert.Empty(t, draft.RawText)

	draft, err = h.voice.AppendTranscript(ctx, admin, "on a revu", true)
	require.NoError(t, err)
	draft, err = h.voice.AppendTranscript(ctx, admin, "les fract", false)
	require.NoError(t, err)
	assert.Equal(t, "on a revu les fract", draft.RawText)
	draft, err = h.voice.AppendTranscript(ctx, admin, "les fractions", true)
	require.NoError(t, err)
	assert.Equal(t, "on a revu les fractions", draft.RawText)

	draft, err = h.voice.Stop(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, model.VoiceReady, draft.Step)
	assert.Equal(t, h.writer.out, draft.Message)
	assert.Equal(t, "on a revu les fractions", h.writer.gotRaw)
	assert.Equal(t, "Léa", h.writer.gotName)

	_, err = h.voice.AppendTranscript(ctx, admin, "encore", true)
	assert.ErrorIs(t, err, ErrVoiceState)

	draft, err = h.voice.Edit(ctx, admin, "Bonjour & à bientôt")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour & à bientôt", draft.Message)

	uri, err := h.voice.ShareURI(ctx, admin, SharePlatformSMS)
	require.NoError(t, err)
	assert.Equal(t, "sms:?body=Bonjour%20%26%20%C3%A0%20bient%C3%B4t", uri)

	draft, err = h.voice.Reset(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, model.VoiceIdle, draft.Step)

	_, err = h.voice.Stop(ctx, admin)
	assert.ErrorIs(t, err, ErrVoiceState)
	_, err = h.voice.Edit(ctx, admin, "x")
	assert.ErrorIs(t, err, ErrVoiceState)
}

func TestVoiceAssistantIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")

	_, err := h.voice.Start(ctx, lea, true)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := h.signUp(t, testAdminEmail)
	_, err = h.voice.Start(ctx, admin, true)
	assert.ErrorIs(t, err, ErrNoStudentSelected)
}

func TestSwitchingStudentResetsVoiceDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	lea := h.student(t, "lea@example.com", "Léa")
	tom := h.student(t, "tom@example.com", "Tom")
	admin := h.adminViewing(t, lea.UserID)

	_, err := h.voice.Start(ctx, admin, true)
	require.NoError(t, err)
	_, err = h.workspace.SelectStudent(ctx, admin, tom.UserID)
	require.NoError(t, err)

	draft, err := h.voice.Get(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, model.VoiceIdle, draft.Step)
}

func TestShareURI(t *testing.T) {
	text := "Séance ok, 2+2 = 4"

	uri, err := ShareURI(SharePlatformWhatsApp, "Léa", text)
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/?text=S%C3%A9ance%20ok%2C%202%2B2%20%3D%204", uri)

	uri, err = ShareURI(SharePlatformMail, "Léa", text)
	require.NoError(t, err)
	assert.Equal(t, "mailto:?subject=Bilan%20S%C3%A9ance%20L%C3%A9a&body=S%C3%A9ance%20ok%2C%202%2B2%20%3D%204", uri)

	_, err = ShareURI("telegram", "Léa", text)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
