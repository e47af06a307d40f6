package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/transport/http/response"
)

const sseKeepAlive = 25 * time.Second

type AuthHandler struct {
	authService      *app.AuthService
	workspaceService *app.WorkspaceService
	hub              *app.SessionHub
	log              *logger.Logger
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

type sessionView struct {
	Session    *app.Session   `json:"session"`
	Resolution app.Resolution `json:"resolution"`
}

func NewAuthHandler(authService *app.AuthService, workspaceService *app.WorkspaceService, hub *app.SessionHub, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		workspaceService: workspaceService,
		hub:              hub,
		log:              log.With("handler", "auth"),
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), app.CredentialsInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, err, "sign up failed")
		return
	}
	response.OK(c, result)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), app.CredentialsInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.log, err, "sign in failed")
		return
	}
	response.OK(c, result)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	if err := h.authService.SignOut(c.Request.Context(), session); err != nil {
		writeError(c, h.log, err, "sign out failed")
		return
	}
	response.OK(c, nil)
}

// Session returns the current session with its resolved role.
func (h *AuthHandler) Session(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	res, err := h.workspaceService.Resolve(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "resolve session failed")
		return
	}
	response.OK(c, sessionView{Session: session, Resolution: res})
}

// Events streams session changes of the signed-in account. The current
// session is sent on connect; the stream ends when this session signs out.
func (h *AuthHandler) Events(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	events, cancel := h.hub.Subscribe(session.UserID)
	defer cancel()

	ctx := c.Request.Context()
	if res, err := h.workspaceService.Resolve(ctx, session); err == nil {
		if writeSSE(c, "session", sessionView{Session: session, Resolution: res}) != nil {
			return
		}
		flusher.Flush()
	} else {
		h.log.Warn("resolve session for stream failed", "session_id", session.ID, "error", err)
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Writer.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case evt, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(c, evt.Type, evt); err != nil {
				return
			}
			flusher.Flush()
			if evt.Type == model.SessionSignedOut && evt.SessionID == session.ID {
				return
			}
		}
	}
}

func writeSSE(c *gin.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = c.Writer.Write([]byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)))
	return err
}
