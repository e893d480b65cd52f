package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func errBody(err error) APIError {
	var ae *utils.AppError
	if errors.As(err, &ae) {
		return APIError{Code: ae.Code, Message: ae.Message}
	}
	return APIError{Code: utils.CodeInternal, Message: http.StatusText(utils.HTTPStatus(err))}
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// requireOwner checks that the JWT subject owns the resource. Admin-role
// tokens bypass the ownership check.
func requireOwner(c *gin.Context, ownerID string) bool {
	userID, ok := requireUserID(c)
	if !ok {
		return false
	}
	if role, _ := c.Get("role"); role == "admin" {
		return true
	}
	if userID != ownerID {
		writeError(c, utils.E(utils.CodeForbidden, "Auth", "forbidden", nil))
		return false
	}
	return true
}

// requireSessionOwner resolves the session on the route and checks that the
// caller's JWT subject is its candidate.
func requireSessionOwner(c *gin.Context, mgr *services.SessionManager) (string, bool) {
	sessionID := c.Param("session_id")
	sess, err := mgr.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	if !requireOwner(c, sess.CandidateID) {
		return "", false
	}
	return sessionID, true
}
