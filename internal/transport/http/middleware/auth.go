package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tutordesk/internal/app"
	"tutordesk/internal/transport/http/response"
)

const ContextSessionKey = "session"

// tokenQueryParam carries the token for EventSource clients, which cannot set headers.
const tokenQueryParam = "access_token"

// Authenticate resolves the bearer token into an app.Session.
func Authenticate(auth *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		session, err := auth.CurrentSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, app.ErrUnauthenticated) {
				response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			} else {
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "session check failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session stored by Authenticate, or nil.
func SessionFrom(c *gin.Context) *app.Session {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*app.Session)
	return session
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		token := strings.TrimSpace(c.Query(tokenQueryParam))
		return token, token != ""
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	return token, token != ""
}
