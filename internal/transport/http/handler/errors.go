package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
	"tutordesk/internal/transport/http/middleware"
	"tutordesk/internal/transport/http/response"
)

// writeError maps service errors onto the JSON envelope. Anything unexpected
// is logged and answered with fallback.
func writeError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrEmailExists):
		response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrSpeechUnsupported):
		response.Error(c, http.StatusBadRequest, response.CodeSpeechUnsupported, err.Error())
	case errors.Is(err, app.ErrInvalidCredential):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, app.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, err.Error())
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict):
		response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
	case errors.Is(err, app.ErrStaleView):
		response.Error(c, http.StatusConflict, response.CodeStaleView, err.Error())
	case errors.Is(err, app.ErrOnboardingRequired):
		response.Error(c, http.StatusConflict, response.CodeOnboardingRequired, err.Error())
	case errors.Is(err, app.ErrNoStudentSelected):
		response.Error(c, http.StatusConflict, response.CodeNoStudentSelected, err.Error())
	case errors.Is(err, app.ErrVoiceState):
		response.Error(c, http.StatusConflict, response.CodeVoiceState, err.Error())
	case errors.Is(err, app.ErrUploadFailed):
		log.Error(fallback, "error", err)
		response.Error(c, http.StatusBadGateway, response.CodeUploadFailed, app.ErrUploadFailed.Error())
	default:
		log.Error(fallback, "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func sessionOrAbort(c *gin.Context) (*app.Session, bool) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "session not found in context")
		return nil, false
	}
	return session, true
}
