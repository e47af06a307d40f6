package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/transport/http/response"
)

type VoiceHandler struct {
	voiceService *app.VoiceService
	log          *logger.Logger
}

type StartVoiceRequest struct {
	SpeechSupported *bool `json:"speech_supported" binding:"required"`
}

type TranscriptRequest struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

type VoiceMessageRequest struct {
	Text string `json:"text"`
}

func NewVoiceHandler(voiceService *app.VoiceService, log *logger.Logger) *VoiceHandler {
	return &VoiceHandler{
		voiceService: voiceService,
		log:          log.With("handler", "voice"),
	}
}

func (h *VoiceHandler) Get(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	draft, err := h.voiceService.Get(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "load voice draft failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) Start(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req StartVoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	draft, err := h.voiceService.Start(c.Request.Context(), session, *req.SpeechSupported)
	if err != nil {
		writeError(c, h.log, err, "start dictation failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) Transcript(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	draft, err := h.voiceService.AppendTranscript(c.Request.Context(), session, req.Text, req.Final)
	if err != nil {
		writeError(c, h.log, err, "append transcript failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) Stop(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	draft, err := h.voiceService.Stop(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "stop dictation failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) Reset(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	draft, err := h.voiceService.Reset(c.Request.Context(), session)
	if err != nil {
		writeError(c, h.log, err, "reset dictation failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) EditMessage(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req VoiceMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	draft, err := h.voiceService.Edit(c.Request.Context(), session, req.Text)
	if err != nil {
		writeError(c, h.log, err, "edit message failed")
		return
	}
	response.OK(c, draft)
}

func (h *VoiceHandler) Share(c *gin.Context) {
	session, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	uri, err := h.voiceService.ShareURI(c.Request.Context(), session, c.Param("platform"))
	if err != nil {
		writeError(c, h.log, err, "build share link failed")
		return
	}
	response.OK(c, gin.H{"uri": uri})
}
