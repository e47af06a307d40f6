package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/transport/http/response"
)

type WorkspaceHandler struct {
	workspaceService *app.WorkspaceService
	log              *logger.Logger
}

type NavigateRequest struct {
	View string `json:"view" binding:"required"`
}

type ProfileRequest struct {
	Name  string `json:"name" binding:"required,max=128"`
	Grade string `json:"grade" binding:"required,max=64"`
}

func NewWorkspaceHandler(workspaceService *app.WorkspaceService, log *logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		log:              log.With("handler", "workspace"),
	}
}

func (h *WorkspaceHandler) Screen(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	screen, err := h.workspaceService.Screen(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "load screen failed")
		return
	}
	response.OK(c, screen)
}

func (h *WorkspaceHandler) Navigate(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	screen, err := h.workspaceService.Navigate(c.Request.Context(), session, req.View)
	if err != nil {
		writeError(c, h.log, err, "navigate failed")
		return
	}
	response.OK(c, screen)
}

func (h *WorkspaceHandler) SelectDocument(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	screen, err := h.workspaceService.SelectDocument(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "open document failed")
		return
	}
	response.OK(c, screen)
}

func (h *WorkspaceHandler) SelectReport(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	screen, err := h.workspaceService.SelectReport(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "open report failed")
		return
	}
	response.OK(c, screen)
}

func (h *WorkspaceHandler) SaveProfile(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	screen, err := h.workspaceService.SaveProfile(c.Request.Context(), session, app.ProfileInput{
		Name:  req.Name,
		Grade: req.Grade,
	})
	if err != nil {
		writeError(c, h.log, err, "save profile failed")
		return
	}
	response.OK(c, screen)
}

func (h *WorkspaceHandler) ToggleTask(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	task, err := h.workspaceService.ToggleTask(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		writeError(c, h.log, err, "toggle task failed")
		return
	}
	response.OK(c, task)
}

func (h *WorkspaceHandler) UploadDocument(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unreadable file")
		return
	}
	defer file.Close()

	doc, err := h.workspaceService.UploadDocument(c.Request.Context(), session, app.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		writeError(c, h.log, err, "upload document failed")
		return
	}
	response.OK(c, doc)
}
