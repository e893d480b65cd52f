package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcohq/marco-backend/internal/providers/llm"
	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/utils"
)

type InterviewHandler struct {
	mgr *services.SessionManager
}

func NewInterviewHandler(mgr *services.SessionManager) *InterviewHandler {
	return &InterviewHandler{mgr: mgr}
}

type StartInterviewRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
	Provider    string `json:"provider" binding:"required"`
	APIKey      string `json:"api_key"`
	Model       string `json:"model"`
	BaseURL     string `json:"base_url"`
}

func (h *InterviewHandler) Start(c *gin.Context) {
	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Start", "invalid request body", err))
		return
	}
	if !requireOwner(c, req.CandidateID) {
		return
	}

	res, err := h.mgr.Start(c.Request.Context(), req.CandidateID, llm.Config{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
		BaseURL:  req.BaseURL,
	})
	if err != nil {
		// The session may have been created even though the first question
		// failed; return it alongside the error so the client can retry.
		if res != nil {
			c.JSON(utils.HTTPStatus(err), gin.H{
				"session": res.Session,
				"error":   errBody(err),
			})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type SubmitAnswerRequest struct {
	AnswerText    string  `json:"answer_text" binding:"required"`
	AudioDuration float64 `json:"audio_duration"`
}

func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SubmitAnswer", "invalid request body", err))
		return
	}

	turn, err := h.mgr.SubmitAnswer(c.Request.Context(), sessionID, req.AnswerText, req.AudioDuration)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *InterviewHandler) NextQuestion(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	res, err := h.mgr.NextQuestion(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type EndInterviewRequest struct {
	Reason string `json:"reason"`
}

func (h *InterviewHandler) End(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	var req EndInterviewRequest
	_ = c.ShouldBindJSON(&req) // body optional; default reason is user_ended

	sess, err := h.mgr.End(c.Request.Context(), sessionID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *InterviewHandler) Get(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	sess, err := h.mgr.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	turns, err := h.mgr.Turns(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "turns": turns})
}
