package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mockmate-ai/mockmate/internal/api/handlers"
	"github.com/mockmate-ai/mockmate/internal/api/middleware"
)

type Deps struct {
	Session  *handlers.SessionHandler
	Feedback *handlers.FeedbackHandler
	Report   *handlers.ReportHandler
	Resume   *handlers.ResumeHandler
	Admin    *handlers.AdminHandler
	WS       *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/interview/sessions", d.Session.Start)
	auth.GET("/interview/sessions", d.Session.List)
	auth.GET("/interview/sessions/:session_id", d.Session.Get)
	auth.POST("/interview/sessions/:session_id/end", d.Session.End)

	auth.POST("/interview/feedback", d.Feedback.Generate)

	auth.GET("/reports", d.Report.List)
	auth.GET("/reports/:id", d.Report.Get)

	auth.POST("/resume", d.Resume.Upload)
	auth.POST("/resume/analyze", d.Resume.Analyze)
	auth.GET("/resume", d.Resume.Latest)
	auth.GET("/resume/analysis", d.Resume.Analysis)
	auth.GET("/resume/status", d.Resume.Status)

	// WebSocket attach for a live session
	auth.GET("/ws/interview/:session_id", d.WS.SessionWS)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/sessions/active", d.Admin.ActiveSessions)
	admin.GET("/sessions/:session_id/chunks", d.Admin.SessionChunks)
}
