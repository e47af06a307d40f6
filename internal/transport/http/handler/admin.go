package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/transport/http/response"
)

type AdminHandler struct {
	workspaceService *app.WorkspaceService
	log              *logger.Logger
}

type CreateTaskRequest struct {
	Title    string `json:"title" binding:"required,max=256"`
	Category string `json:"category" binding:"max=64"`
	DueDate  string `json:"due_date" binding:"max=64"`
	Color    string `json:"color" binding:"max=64"`
}

type CreateReportRequest struct {
	Subject      string   `json:"subject" binding:"max=128"`
	Summary      string   `json:"summary" binding:"required,max=512"`
	FullFeedback string   `json:"full_feedback" binding:"required"`
	Date         string   `json:"date"`
	NextGoals    []string `json:"next_goals"`
}

type CreateSubjectRequest struct {
	Name     string `json:"name" binding:"required,max=128"`
	Progress int    `json:"progress" binding:"min=0,max=100"`
	Color    string `json:"color" binding:"max=64"`
}

func NewAdminHandler(workspaceService *app.WorkspaceService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		workspaceService: workspaceService,
		log:              log.With("handler", "admin"),
	}
}

func (h *AdminHandler) ListStudents(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	students, err := h.workspaceService.Roster(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "list students failed")
		return
	}
	response.OK(c, students)
}

func (h *AdminHandler) ViewStudent(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	screen, err := h.workspaceService.SelectStudent(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "select student failed")
		return
	}
	response.OK(c, screen)
}

func (h *AdminHandler) ClearView(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	screen, err := h.workspaceService.ClearStudent(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "back to roster failed")
		return
	}
	response.OK(c, screen)
}

func (h *AdminHandler) CreateTask(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	screen, err := h.workspaceService.CreateTask(c.Request.Context(), session, app.CreateTaskInput{
		Title:    req.Title,
		Category: req.Category,
		DueDate:  req.DueDate,
		Color:    req.Color,
	})
	if err != nil {
		writeError(c, h.log, err, "create task failed")
		return
	}
	response.OK(c, screen)
}

func (h *AdminHandler) CreateReport(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	screen, err := h.workspaceService.CreateReport(c.Request.Context(), session, app.CreateReportInput{
		Subject:      req.Subject,
		Summary:      req.Summary,
		FullFeedback: req.FullFeedback,
		Date:         req.Date,
		NextGoals:    req.NextGoals,
	})
	if err != nil {
		writeError(c, h.log, err, "create report failed")
		return
	}
	response.OK(c, screen)
}

func (h *AdminHandler) CreateSubject(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	screen, err := h.workspaceService.CreateSubject(c.Request.Context(), session, app.CreateSubjectInput{
		Name:     req.Name,
		Progress: req.Progress,
		Color:    req.Color,
	})
	if err != nil {
		writeError(c, h.log, err, "create subject failed")
		return
	}
	response.OK(c, screen)
}
