package model

type VoiceStep string

const (
	VoiceIdle       VoiceStep = "idle"
	VoiceListening  VoiceStep = "listening"
	VoiceProcessing VoiceStep = "processing"
	VoiceReady      VoiceStep = "ready"
)

// VoiceDraft is the dictation assistant's progress for one signed-in session.
type VoiceDraft struct {
	Step      VoiceStep `json:"step"`
	StudentID string    `json:"student_id,omitempty"`
	RawText   string    `json:"raw_text"`
	Message   string    `json:"message"`
}

// ViewState is the navigation state of one signed-in session. Generation grows
// every time the viewed student changes; loads started under an older
// generation are discarded.
type ViewState struct {
	View               string     `json:"view"`
	ViewingStudentID   string     `json:"viewing_student_id,omitempty"`
	SelectedDocumentID string     `json:"selected_document_id,omitempty"`
	SelectedReportID   string     `json:"selected_report_id,omitempty"`
	Generation         uint64     `json:"generation"`
	Voice              VoiceDraft `json:"voice"`
}

// SetViewingStudent switches the viewed student and invalidates in-flight loads.
func (s *ViewState) SetViewingStudent(id string) {
	if s.ViewingStudentID == id {
		return
	}
	s.ViewingStudentID = id
	s.SelectedDocumentID = ""
	s.SelectedReportID = ""
	s.Voice = VoiceDraft{Step: VoiceIdle}
	s.Generation++
}
