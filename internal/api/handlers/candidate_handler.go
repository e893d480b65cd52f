package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcohq/marco-backend/internal/services"
	"github.com/marcohq/marco-backend/internal/utils"
)

type CandidateHandler struct {
	svc services.CandidateService
}

func NewCandidateHandler(svc services.CandidateService) *CandidateHandler {
	return &CandidateHandler{svc: svc}
}

type CreateCandidateRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email"`
	TargetPosition string `json:"target_position" binding:"required"`
}

func (h *CandidateHandler) Create(c *gin.Context) {
	var req CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CandidateHandler.Create", "invalid request body", err))
		return
	}

	cand, err := h.svc.Create(c.Request.Context(), req.FullName, req.Email, req.TargetPosition)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cand)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	if !requireOwner(c, c.Param("candidate_id")) {
		return
	}
	cand, err := h.svc.Get(c.Request.Context(), c.Param("candidate_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

// UploadResume takes multipart form data: the file plus the already-extracted
// resume_text, comma-separated skills, and optional embedding (JSON number
// array) from the upstream parser.
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	const op = "CandidateHandler.UploadResume"

	candidateID := c.Param("candidate_id")
	if !requireOwner(c, candidateID) {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is required", err))
		return
	}

	const maxResumeBytes = 10 << 20
	if fh.Size > maxResumeBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large", nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer f.Close()

	resumeText := c.PostForm("resume_text")
	var skills []string
	if raw := c.PostForm("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}
	var embedding []float32
	if raw := c.PostForm("embedding"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "embedding must be a JSON number array", err))
			return
		}
	}

	row, err := h.svc.UploadResume(c.Request.Context(), candidateID, fh.Filename,
		int(fh.Size), fh.Header.Get("Content-Type"), f, resumeText, skills, embedding)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}
