package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mockmate-ai/mockmate/internal/models"
	"github.com/mockmate-ai/mockmate/internal/services"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

type FeedbackHandler struct {
	svc services.FeedbackService
}

func NewFeedbackHandler(svc services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type GenerateFeedbackRequest struct {
	SessionID      string                   `json:"session_id" binding:"required"`
	Transcript     []models.TranscriptEntry `json:"transcript"`
	ResumeAnalysis json.RawMessage          `json:"resume_analysis"`
}

// Generate evaluates a client-supplied transcript directly. An empty
// transcript is acknowledged without calling the model or writing
// anything.
func (h *FeedbackHandler) Generate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req GenerateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "FeedbackHandler.Generate", "invalid request body", err))
		return
	}

	res, err := h.svc.GenerateForSession(c.Request.Context(), userID, req.SessionID, req.Transcript, req.ResumeAnalysis)
	if err != nil {
		writeError(c, err)
		return
	}

	if res == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":           "no transcript to evaluate",
			"transcript_length": 0,
			"saved":             false,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}
