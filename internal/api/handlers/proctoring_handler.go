package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcohq/marco-backend/internal/cache"
	"github.com/marcohq/marco-backend/internal/proctoring"
	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/utils"
)

type ProctoringHandler struct {
	mgr   *services.SessionManager
	cache cache.Cache // optional; read-side status caching
}

func NewProctoringHandler(mgr *services.SessionManager, c cache.Cache) *ProctoringHandler {
	return &ProctoringHandler{mgr: mgr, cache: c}
}

type PoseFrameRequest struct {
	FaceDetected  bool    `json:"face_detected"`
	MultipleFaces bool    `json:"multiple_faces"`
	Pitch         float64 `json:"pitch"`
	Yaw           float64 `json:"yaw"`
	Roll          float64 `json:"roll"`
	Confidence    float64 `json:"confidence"`
	// Capture time in RFC 3339. Optional; the server stamps missing values.
	Timestamp string `json:"timestamp"`
}

func (h *ProctoringHandler) Frame(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	var req PoseFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProctoringHandler.Frame", "invalid request body", err))
		return
	}

	var at time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, req.Timestamp)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ProctoringHandler.Frame", "invalid timestamp", err))
			return
		}
		at = parsed
	}

	verdict, err := h.mgr.RecordPoseSample(c.Request.Context(), sessionID, proctoring.PoseSample{
		FaceDetected:  req.FaceDetected,
		MultipleFaces: req.MultipleFaces,
		Pitch:         req.Pitch,
		Yaw:           req.Yaw,
		Roll:          req.Roll,
		Confidence:    req.Confidence,
	}, at)
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidateStatus(c, sessionID)
	c.JSON(http.StatusOK, verdict)
}

func (h *ProctoringHandler) TabSwitch(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}

	verdict, err := h.mgr.RecordTabSwitch(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidateStatus(c, sessionID)
	c.JSON(http.StatusOK, verdict)
}

// Status is polled by clients between frames, so it is served from a short
// lived cache when one is configured.
func (h *ProctoringHandler) Status(c *gin.Context) {
	sessionID, ok := requireSessionOwner(c, h.mgr)
	if !ok {
		return
	}
	key := statusCacheKey(sessionID)

	if h.cache != nil {
		var cached services.ViolationStatus
		if hit, err := h.cache.GetJSON(c.Request.Context(), key, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	st, err := h.mgr.Status(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(c.Request.Context(), key, st, 2*time.Second)
	}
	c.JSON(http.StatusOK, st)
}

func (h *ProctoringHandler) invalidateStatus(c *gin.Context, sessionID string) {
	if h.cache != nil {
		_ = h.cache.Del(c.Request.Context(), statusCacheKey(sessionID))
	}
}

func statusCacheKey(sessionID string) string {
	return "proctor:status:" + sessionID
}
