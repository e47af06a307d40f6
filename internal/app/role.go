package app

import (
	"strings"

	"tutordesk/internal/model"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseOnboarding      Phase = "onboarding"
	PhaseAdminRoster     Phase = "admin-roster"
	PhaseAdminViewing    Phase = "admin-viewing"
	PhaseStudent         Phase = "student"
)

type Resolution struct {
	Phase            Phase  `json:"phase"`
	IsAdmin          bool   `json:"is_admin"`
	ViewingStudentID string `json:"viewing_student_id,omitempty"`
}

// ResolveRole decides what a session may see. profile is the signed-in
// account's own row (nil when absent); selectedStudentID is only honoured for
// admins. Identities without a usable profile are sent to onboarding.
func ResolveRole(session *Session, profile *model.Profile, adminEmail, selectedStudentID string) Resolution {
	if session == nil {
		return Resolution{Phase: PhaseUnauthenticated}
	}

	if isAdminEmail(session.Email, adminEmail) || profile.IsAdmin() {
		if selectedStudentID == "" {
			return Resolution{Phase: PhaseAdminRoster, IsAdmin: true}
		}
		return Resolution{Phase: PhaseAdminViewing, IsAdmin: true, ViewingStudentID: selectedStudentID}
	}

	if profile == nil || strings.TrimSpace(profile.Name) == "" {
		return Resolution{Phase: PhaseOnboarding, ViewingStudentID: session.UserID}
	}
	return Resolution{Phase: PhaseStudent, ViewingStudentID: session.UserID}
}

func isAdminEmail(email, adminEmail string) bool {
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), adminEmail)
}
