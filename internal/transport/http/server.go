package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tutordesk/internal/bootstrap"
	"tutordesk/internal/transport/http/handler"
	"tutordesk/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Log), gin.Recovery())
	// cors.New panics on an empty origin list; same-origin clients need no headers.
	if origins := app.Config.App.CORSOrigins; len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	if app.LocalFiles != nil {
		router.Static("/files", app.LocalFiles.Dir())
	}

	authHandler := handler.NewAuthHandler(app.Auth, app.Workspace, app.Hub, app.Log)
	workspaceHandler := handler.NewWorkspaceHandler(app.Workspace, app.Log)
	adminHandler := handler.NewAdminHandler(app.Workspace, app.Log)
	voiceHandler := handler.NewVoiceHandler(app.Voice, app.Log)
	requireAuth := middleware.Authenticate(app.Auth)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireConfig(app.ConfigErr))

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/signout", requireAuth, authHandler.SignOut)
	authGroup.GET("/session", requireAuth, authHandler.Session)
	authGroup.GET("/events", requireAuth, authHandler.Events)

	appGroup := v1.Group("/app")
	appGroup.Use(requireAuth)
	appGroup.GET("/screen", workspaceHandler.Screen)
	appGroup.POST("/navigate", workspaceHandler.Navigate)
	appGroup.POST("/documents/:id/select", workspaceHandler.SelectDocument)
	appGroup.POST("/reports/:id/select", workspaceHandler.SelectReport)
	appGroup.PUT("/profile", workspaceHandler.SaveProfile)
	appGroup.POST("/tasks/:id/toggle", workspaceHandler.ToggleTask)
	appGroup.POST("/documents", workspaceHandler.UploadDocument)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(requireAuth)
	adminGroup.GET("/students", adminHandler.ListStudents)
	adminGroup.POST("/students/:id/view", adminHandler.ViewStudent)
	adminGroup.DELETE("/view", adminHandler.ClearView)
	adminGroup.POST("/tasks", adminHandler.CreateTask)
	adminGroup.POST("/reports", adminHandler.CreateReport)
	adminGroup.POST("/subjects", adminHandler.CreateSubject)

	voiceGroup := v1.Group("/voice")
	voiceGroup.Use(requireAuth)
	voiceGroup.GET("", voiceHandler.Get)
	voiceGroup.POST("/start", voiceHandler.Start)
	voiceGroup.POST("/transcript", voiceHandler.Transcript)
	voiceGroup.POST("/stop", voiceHandler.Stop)
	voiceGroup.POST("/reset", voiceHandler.Reset)
	voiceGroup.PUT("/message", voiceHandler.EditMessage)
	voiceGroup.GET("/share/:platform", voiceHandler.Share)

	return router
}
