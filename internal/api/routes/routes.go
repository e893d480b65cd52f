package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/marcohq/marco-backend/internal/api/handlers"
	"github.com/marcohq/marco-backend/internal/api/middleware"
)

type Deps struct {
	Candidate  *handlers.CandidateHandler
	Interview  *handlers.InterviewHandler
	Proctoring *handlers.ProctoringHandler
	Evaluation *handlers.EvaluationHandler
	WS         *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/candidates", d.Candidate.Create)
	auth.GET("/candidates/:candidate_id", d.Candidate.Get)
	auth.POST("/candidates/:candidate_id/resume", d.Candidate.UploadResume)

	auth.POST("/interview/start", d.Interview.Start)
	auth.GET("/interview/:session_id", d.Interview.Get)
	auth.POST("/interview/:session_id/question", d.Interview.NextQuestion)
	auth.POST("/interview/:session_id/answer", d.Interview.SubmitAnswer)
	auth.POST("/interview/:session_id/end", d.Interview.End)

	auth.POST("/proctoring/:session_id/frame", d.Proctoring.Frame)
	auth.POST("/proctoring/:session_id/tab-switch", d.Proctoring.TabSwitch)
	auth.GET("/proctoring/:session_id/status", d.Proctoring.Status)

	auth.POST("/evaluation/:session_id", d.Evaluation.Generate)
	auth.GET("/evaluation/:session_id", d.Evaluation.Get)

	// WebSocket
	auth.GET("/ws/session/:session_id", d.WS.SessionWS)
}
