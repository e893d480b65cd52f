package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcohq/marco-backend/internal/services"
)

type EvaluationHandler struct {
	svc services.EvaluationService
	mgr *services.SessionManager
}

func NewEvaluationHandler(svc services.EvaluationService, mgr *services.SessionManager) *EvaluationHandler {
	return &EvaluationHandler{svc: svc, mgr: mgr}
}

func (h *EvaluationHandler) Generate(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	row, err := h.svc.Generate(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *EvaluationHandler) Get(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	row, err := h.svc.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
