package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mockmate-ai/mockmate/internal/services"
	"github.com/mockmate-ai/mockmate/internal/utils"
)

// AdminHandler exposes runtime introspection for operators.
type AdminHandler struct {
	interviews services.InterviewService
	buffers    services.BufferService
}

func NewAdminHandler(interviews services.InterviewService, buffers services.BufferService) *AdminHandler {
	return &AdminHandler{interviews: interviews, buffers: buffers}
}

func (h *AdminHandler) ActiveSessions(c *gin.Context) {
	active := h.interviews.Active()
	c.JSON(http.StatusOK, gin.H{
		"count":    len(active),
		"sessions": active,
	})
}

// SessionChunks returns the per-chunk processing trail of a session.
func (h *AdminHandler) SessionChunks(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.SessionChunks", "missing session_id", nil))
		return
	}

	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	chunks, err := h.buffers.ListBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": chunks})
}
