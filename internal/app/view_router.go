package app

import (
	"math"

	"tutordesk/internal/model"
)

type View string

const (
	ViewDashboard      View = "dashboard"
	ViewCourses        View = "courses"
	ViewDocuments      View = "documents"
	ViewDocumentDetail View = "document-detail"
	ViewReports        View = "reports"
	ViewReportDetail   View = "report-detail"
	ViewProfile        View = "profile"
	ViewOnboarding     View = "onboarding"
)

// ParseView accepts the view names a client may navigate to.
func ParseView(raw string) (View, bool) {
	switch v := View(raw); v {
	case ViewDashboard, ViewCourses, ViewDocuments, ViewDocumentDetail,
		ViewReports, ViewReportDetail, ViewProfile, ViewOnboarding:
		return v, true
	}
	return "", false
}

type ScreenKind string

const (
	ScreenLogin            ScreenKind = "login"
	ScreenRoster           ScreenKind = "roster"
	ScreenOnboarding       ScreenKind = "onboarding"
	ScreenStudentDashboard ScreenKind = "student-dashboard"
	ScreenAdminDashboard   ScreenKind = "admin-student-dashboard"
	ScreenCourses          ScreenKind = "courses"
	ScreenDocuments        ScreenKind = "documents"
	ScreenDocumentDetail   ScreenKind = "document-detail"
	ScreenReports          ScreenKind = "reports"
	ScreenReportDetail     ScreenKind = "report-detail"
	ScreenProfile          ScreenKind = "profile"
	ScreenEmpty            ScreenKind = "empty"
)

// Actions offered on screens.
const (
	ActionSelectStudent  = "select-student"
	ActionBackToRoster   = "back-to-roster"
	ActionCreateTask     = "create-task"
	ActionCreateReport   = "create-report"
	ActionCreateSubject  = "create-subject"
	ActionVoiceReport    = "voice-report"
	ActionUploadDocument = "upload-document"
	ActionToggleTask     = "toggle-task"
	ActionSaveProfile    = "save-profile"
)

const quickListSize = 3

type DashboardStats struct {
	OverallProgress int `json:"overall_progress"`
	PendingTasks    int `json:"pending_tasks"`
	NewReports      int `json:"new_reports"`
}

// Screen is the render model of one view.
type Screen struct {
	Kind      ScreenKind            `json:"kind"`
	View      View                  `json:"view,omitempty"`
	Phase     Phase                 `json:"phase"`
	Student   *model.Profile        `json:"student,omitempty"`
	Stats     *DashboardStats       `json:"stats,omitempty"`
	Subjects  []model.Subject       `json:"subjects,omitempty"`
	Tasks     []model.Task          `json:"tasks,omitempty"`
	Documents []model.Document      `json:"documents,omitempty"`
	Reports   []model.SessionReport `json:"reports,omitempty"`
	Document  *model.Document       `json:"document,omitempty"`
	Report    *model.SessionReport  `json:"report,omitempty"`
	Roster    []model.Profile       `json:"roster,omitempty"`
	Actions   []string              `json:"actions,omitempty"`
	BackTo    View                  `json:"back_to,omitempty"`
	Warnings  []string              `json:"warnings,omitempty"`
}

type RouteInput struct {
	Resolution Resolution
	State      model.ViewState
	Snapshot   *Snapshot
	Roster     []model.Profile
	OwnProfile *model.Profile
}

// RouteView maps navigation state to the screen to render. It never fails:
// inconsistent input yields the empty fallback screen.
func RouteView(in RouteInput) Screen {
	res := in.Resolution
	switch res.Phase {
	case PhaseUnauthenticated, "":
		return Screen{Kind: ScreenLogin, Phase: PhaseUnauthenticated}
	case PhaseOnboarding:
		return onboardingScreen(res.Phase, in.OwnProfile)
	case PhaseAdminRoster:
		return Screen{
			Kind:    ScreenRoster,
			Phase:   res.Phase,
			Roster:  in.Roster,
			Actions: []string{ActionSelectStudent},
		}
	}

	snap := in.Snapshot
	if snap == nil || snap.StudentID != res.ViewingStudentID {
		return Screen{Kind: ScreenEmpty, Phase: res.Phase, View: ViewDashboard}
	}
	if snap.NeedsOnboarding && !res.IsAdmin {
		return onboardingScreen(PhaseOnboarding, snap.Profile)
	}

	view, ok := ParseView(in.State.View)
	if !ok || view == ViewOnboarding {
		view = ViewDashboard
	}

	screen := Screen{
		View:     view,
		Phase:    res.Phase,
		Student:  snap.Profile,
		Warnings: snap.Warnings,
	}

	switch view {
	case ViewCourses:
		screen.Kind = ScreenCourses
		screen.Subjects = snap.Subjects
	case ViewDocuments:
		screen.Kind = ScreenDocuments
		screen.Documents = snap.Documents
		screen.Actions = []string{ActionUploadDocument}
	case ViewDocumentDetail:
		doc := findDocument(snap.Documents, in.State.SelectedDocumentID)
		if doc == nil {
			return emptyScreen(screen, ViewDocuments)
		}
		screen.Kind = ScreenDocumentDetail
		screen.Document = doc
		screen.BackTo = ViewDocuments
	case ViewReports:
		screen.Kind = ScreenReports
		screen.Reports = snap.Reports
		if res.IsAdmin {
			screen.Actions = []string{ActionCreateReport, ActionVoiceReport}
		}
	case ViewReportDetail:
		report := findReport(snap.Reports, in.State.SelectedReportID)
		if report == nil {
			return emptyScreen(screen, ViewReports)
		}
		screen.Kind = ScreenReportDetail
		screen.Report = report
		screen.BackTo = ViewReports
	case ViewProfile:
		screen.Kind = ScreenProfile
		screen.Actions = []string{ActionSaveProfile}
		screen.BackTo = ViewDashboard
	default:
		stats := dashboardStats(snap)
		screen.Stats = &stats
		screen.Subjects = snap.Subjects
		screen.Tasks = snap.Tasks
		screen.Reports = firstN(snap.Reports, quickListSize)
		screen.Documents = firstN(snap.Documents, quickListSize)
		if res.IsAdmin {
			screen.Kind = ScreenAdminDashboard
			screen.Actions = []string{
				ActionCreateTask,
				ActionCreateReport,
				ActionVoiceReport,
				ActionUploadDocument,
				ActionCreateSubject,
				ActionBackToRoster,
			}
		} else {
			screen.Kind = ScreenStudentDashboard
			screen.Actions = []string{ActionToggleTask, ActionUploadDocument}
		}
	}
	return screen
}

func onboardingScreen(phase Phase, profile *model.Profile) Screen {
	return Screen{
		Kind:    ScreenOnboarding,
		View:    ViewOnboarding,
		Phase:   phase,
		Student: profile,
		Actions: []string{ActionSaveProfile},
	}
}

func emptyScreen(base Screen, back View) Screen {
	return Screen{
		Kind:     ScreenEmpty,
		View:     base.View,
		Phase:    base.Phase,
		Student:  base.Student,
		BackTo:   back,
		Warnings: base.Warnings,
	}
}

func dashboardStats(snap *Snapshot) DashboardStats {
	var stats DashboardStats
	if len(snap.Subjects) > 0 {
		total := 0
		for _, s := range snap.Subjects {
			total += clampPercent(s.Progress)
		}
		stats.OverallProgress = int(math.Round(float64(total) / float64(len(snap.Subjects))))
	}
	for _, t := range snap.Tasks {
		if !t.IsCompleted {
			stats.PendingTasks++
		}
	}
	for _, r := range snap.Reports {
		if r.IsNew {
			stats.NewReports++
		}
	}
	return stats
}

func clampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func findDocument(docs []model.Document, id string) *model.Document {
	if id == "" {
		return nil
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i]
		}
	}
	return nil
}

func findReport(reports []model.SessionReport, id string) *model.SessionReport {
	if id == "" {
		return nil
	}
	for i := range reports {
		if reports[i].ID == id {
			return &reports[i]
		}
	}
	return nil
}

func firstN[T any](rows []T, n int) []T {
	if len(rows) <= n {
		return rows
	}
	return rows[:n]
}
