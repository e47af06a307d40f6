package app

import (
	"context"
	"net/url"
	"strings"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
)

// ParentMessageWriter turns a raw dictation into a message for parents. It
// always returns displayable text.
type ParentMessageWriter interface {
	ParentMessage(ctx context.Context, rawText, studentName string) string
}

const (
	SharePlatformWhatsApp = "whatsapp"
	SharePlatformMail     = "mail"
	SharePlatformSMS      = "sms"
)

// VoiceService drives the dictation assistant an admin opens on a student's
// dashboard. Speech recognition runs in the browser; transcripts arrive here.
type VoiceService struct {
	workspace *WorkspaceService
	writer    ParentMessageWriter
	log       *logger.Logger
}

func NewVoiceService(workspace *WorkspaceService, writer ParentMessageWriter, log *logger.Logger) *VoiceService {
	return &VoiceService{
		workspace: workspace,
		writer:    writer,
		log:       log.With("service", "VoiceService"),
	}
}

// Get returns the current draft.
func (s *VoiceService) Get(ctx context.Context, session *Session) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	return draftOf(vc.state), nil
}

// Start begins listening. Without browser speech support the assistant stays idle.
func (s *VoiceService) Start(ctx context.Context, session *Session, speechSupported bool) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	if !speechSupported {
		return draftOf(vc.state), ErrSpeechUnsupported
	}
	return s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		*d = model.VoiceDraft{Step: model.VoiceListening, StudentID: vc.res.ViewingStudentID}
		return nil
	})
}

// AppendTranscript stores a finalized fragment. Interim fragments are only
// echoed back in the returned draft.
func (s *VoiceService) AppendTranscript(ctx context.Context, session *Session, fragment string, final bool) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	fragment = strings.TrimSpace(fragment)
	if !final || fragment == "" {
		draft := draftOf(vc.state)
		if draft.Step != model.VoiceListening {
			return draft, ErrVoiceState
		}
		if fragment != "" {
			draft.RawText = joinFragment(draft.RawText, fragment)
		}
		return draft, nil
	}
	return s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		if d.Step != model.VoiceListening {
			return ErrVoiceState
		}
		d.RawText = joinFragment(d.RawText, fragment)
		return nil
	})
}

// Stop ends listening and generates the parent message. The draft always ends
// in ready, with fallback text when generation was not possible.
func (s *VoiceService) Stop(ctx context.Context, session *Session) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	draft, err := s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		if d.Step != model.VoiceListening && d.Step != model.VoiceProcessing {
			return ErrVoiceState
		}
		d.Step = model.VoiceProcessing
		return nil
	})
	if err != nil {
		return draft, err
	}

	name := ""
	if student, err := s.workspace.profiles.GetByID(ctx, vc.res.ViewingStudentID); err != nil {
		s.log.Warn("student lookup failed", "student_id", vc.res.ViewingStudentID, "error", err)
	} else if student != nil {
		name = student.Name
	}
	message := s.writer.ParentMessage(ctx, draft.RawText, name)

	return s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		if d.Step != model.VoiceProcessing || d.StudentID != draft.StudentID {
			return ErrVoiceState
		}
		d.Step = model.VoiceReady
		d.Message = message
		return nil
	})
}

// Edit replaces the generated message before it is shared.
func (s *VoiceService) Edit(ctx context.Context, session *Session, text string) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	return s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		if d.Step != model.VoiceReady {
			return ErrVoiceState
		}
		d.Message = text
		return nil
	})
}

// Reset closes the assistant.
func (s *VoiceService) Reset(ctx context.Context, session *Session) (model.VoiceDraft, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return model.VoiceDraft{}, err
	}
	return s.mutate(ctx, vc, func(d *model.VoiceDraft) error {
		*d = model.VoiceDraft{Step: model.VoiceIdle}
		return nil
	})
}

// ShareURI builds the hand-off link of the ready message for one platform.
func (s *VoiceService) ShareURI(ctx context.Context, session *Session, platform string) (string, error) {
	vc, err := s.workspace.adminViewing(ctx, session)
	if err != nil {
		return "", err
	}
	draft := draftOf(vc.state)
	if draft.Step != model.VoiceReady {
		return "", ErrVoiceState
	}
	name := ""
	if student, err := s.workspace.profiles.GetByID(ctx, vc.res.ViewingStudentID); err == nil && student != nil {
		name = student.Name
	}
	return ShareURI(platform, name, draft.Message)
}

// ShareURI encodes text into a WhatsApp, mail or SMS link.
func ShareURI(platform, studentName, text string) (string, error) {
	body := encodeComponent(text)
	switch platform {
	case SharePlatformWhatsApp:
		return "https://wa.me/?text=" + body, nil
	case SharePlatformMail:
		subject := encodeComponent(strings.TrimSpace("Bilan Séance " + studentName))
		return "mailto:?subject=" + subject + "&body=" + body, nil
	case SharePlatformSMS:
		return "sms:?body=" + body, nil
	}
	return "", ErrInvalidInput
}

// encodeComponent escapes like a URI component: spaces become %20, not "+".
func encodeComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

func (s *VoiceService) mutate(ctx context.Context, vc *viewContext, fn func(*model.VoiceDraft) error) (model.VoiceDraft, error) {
	studentID := vc.res.ViewingStudentID
	state, err := s.workspace.states.Update(ctx, vc.session.ID, func(st *model.ViewState) error {
		if st.ViewingStudentID != studentID {
			return ErrStaleView
		}
		return fn(&st.Voice)
	})
	if err != nil {
		return draftOf(state), err
	}
	vc.state = state
	return draftOf(state), nil
}

func draftOf(state model.ViewState) model.VoiceDraft {
	d := state.Voice
	if d.Step == "" {
		d.Step = model.VoiceIdle
	}
	return d
}

func joinFragment(buf, fragment string) string {
	if buf == "" {
		return fragment
	}
	return buf + " " + fragment
}
